package keyword

import (
	"strings"
	"unicode"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
)

// Single words are matched against the token set, phrases against the
// normalized text. Keep entries lowercase.
var emotionKeywords = map[constant.EmotionTag][]string{
	constant.EmotionJoy:      {"happy", "glad", "excited", "great", "awesome", "wonderful", "amazing", "yay", "delighted"},
	constant.EmotionSadness:  {"sad", "unhappy", "depressed", "lonely", "miserable", "crying", "heartbroken", "down today", "feeling down"},
	constant.EmotionAnger:    {"angry", "furious", "annoyed", "frustrated", "irritated", "fed up", "pissed"},
	constant.EmotionFear:     {"afraid", "scared", "anxious", "worried", "nervous", "terrified", "panicking"},
	constant.EmotionSurprise: {"surprised", "shocked", "unexpected", "wow", "unbelievable", "can't believe", "no way"},
	constant.EmotionLove:     {"love", "adore", "cherish", "fond of", "care about"},
}

type cueClass struct {
	tag        string
	importance constant.Importance
	phrases    []string
}

// Cue classes are checked in order; the first class names the tag, the
// strongest class wins the importance.
var memoryCues = []cueClass{
	{tag: "explicit", importance: constant.ImportanceHigh, phrases: []string{"remember that", "remember this", "don't forget", "please remember"}},
	{tag: "identity", importance: constant.ImportanceHigh, phrases: []string{"my name is", "call me", "i was born", "my birthday is", "i live in", "i work as", "i work at", "my job is"}},
	{tag: "health", importance: constant.ImportanceHigh, phrases: []string{"i'm allergic", "i am allergic", "allergic to", "my doctor said"}},
	{tag: "relationship", importance: constant.ImportanceMedium, phrases: []string{"my wife", "my husband", "my partner", "my mom", "my dad", "my sister", "my brother", "my best friend", "my dog", "my cat"}},
	{tag: "preference", importance: constant.ImportanceMedium, phrases: []string{"i love", "i like", "i enjoy", "i prefer", "my favorite", "i hate", "i can't stand", "i dislike"}},
	{tag: "goal", importance: constant.ImportanceMedium, phrases: []string{"i want to", "i'm trying to", "i am trying to", "my goal is", "i plan to", "i hope to", "i'm working on"}},
}

const maxCandidateLength = 500

// Candidate is a remember-worthy sentence lifted from a user message.
type Candidate struct {
	Content    string
	Importance constant.Importance
	Tags       []string
}

// DetectEmotions returns the distinct emotions whose keywords appear in
// text, ordered like constant.AllEmotions. No match yields no tags, not
// neutral; neutral is a message-level default, not a detection result.
func DetectEmotions(text string) []constant.EmotionTag {
	normalized := normalize(text)
	if normalized == "" {
		return nil
	}
	tokens := tokenSet(normalized)

	var found []constant.EmotionTag
	for _, tag := range constant.AllEmotions {
		keywords, ok := emotionKeywords[tag]
		if !ok {
			continue
		}
		for _, kw := range keywords {
			if matches(normalized, tokens, kw) {
				found = append(found, tag)
				break
			}
		}
	}
	return found
}

// PrimaryEmotion reduces a message to a single tag, neutral when nothing
// matches.
func PrimaryEmotion(text string) constant.EmotionTag {
	if tags := DetectEmotions(text); len(tags) > 0 {
		return tags[0]
	}
	return constant.EmotionNeutral
}

// ExtractMemories scans a user message for first-person cues and returns
// one candidate per cue-bearing sentence. Importance is the strongest cue
// class found in that sentence.
func ExtractMemories(text string) []Candidate {
	var candidates []Candidate
	for _, sentence := range splitSentences(text) {
		normalized := normalize(sentence)
		if normalized == "" {
			continue
		}

		var tags []string
		importance := constant.Importance("")
		for _, class := range memoryCues {
			for _, phrase := range class.phrases {
				if strings.Contains(normalized, phrase) {
					tags = append(tags, class.tag)
					if class.importance.Rank() > importance.Rank() {
						importance = class.importance
					}
					break
				}
			}
		}
		if len(tags) == 0 {
			continue
		}

		content := strings.TrimSpace(sentence)
		if len(content) > maxCandidateLength {
			content = content[:maxCandidateLength]
		}
		candidates = append(candidates, Candidate{
			Content:    content,
			Importance: importance,
			Tags:       tags,
		})
	}
	return candidates
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func tokenSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	tokens := strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

func matches(normalized string, tokens map[string]struct{}, keyword string) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(normalized, keyword)
	}
	_, ok := tokens[keyword]
	return ok
}
