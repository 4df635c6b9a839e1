package textchunk

import (
	"regexp"
	"strings"
)

// Splitter cuts text into chunks no larger than maxSize characters with an
// overlap window carried between neighbours.
type Splitter interface {
	Chunk(text string, maxSize, overlap int) []Chunk
}

// Chunk is one piece of the original text with its position recorded.
type Chunk struct {
	Text        string
	StartIdx    int
	EndIdx      int
	ChunkIdx    int
	TotalChunks int
}

type Config struct {
	MaxSize  int    // hard cap per chunk, default 1000
	Overlap  int    // overlap window, default 100
	MinSize  int    // do not cut before this many characters, default 200
	Strategy string // "sentence" or "fixed", default "sentence"
}

func DefaultConfig() Config {
	return Config{
		MaxSize:  1000,
		Overlap:  100,
		MinSize:  200,
		Strategy: "sentence",
	}
}

func NewSplitter(config Config) Splitter {
	if config.MaxSize <= 0 {
		config.MaxSize = 1000
	}
	if config.Overlap < 0 {
		config.Overlap = 100
	}
	if config.Overlap >= config.MaxSize {
		config.Overlap = config.MaxSize / 10
	}
	if config.MinSize <= 0 {
		config.MinSize = 200
	}

	switch config.Strategy {
	case "fixed":
		return &FixedSplitter{config: config}
	default:
		return &SentenceSplitter{config: config}
	}
}

// SentenceSplitter accumulates whole sentences until the cap is reached.
type SentenceSplitter struct {
	config Config
}

func (c *SentenceSplitter) Chunk(text string, maxSize, overlap int) []Chunk {
	if maxSize <= 0 {
		maxSize = c.config.MaxSize
	}
	if overlap < 0 {
		overlap = c.config.Overlap
	}

	if len(text) <= maxSize {
		return singleChunk(text)
	}

	sentences := splitSentences(text)
	chunks := make([]Chunk, 0)
	currentChunk := strings.Builder{}
	currentStart := 0
	chunkIdx := 0

	for i, sent := range sentences {
		sentText := strings.TrimSpace(sent.Text)
		if sentText == "" {
			continue
		}

		currentLen := currentChunk.Len()
		if currentLen == 0 {
			currentChunk.WriteString(sentText)
			currentStart = sent.StartIdx
			continue
		}

		if currentLen+len(sentText)+1 > maxSize && currentLen >= c.config.MinSize {
			chunks = append(chunks, Chunk{
				Text:     currentChunk.String(),
				StartIdx: currentStart,
				EndIdx:   sentences[i-1].EndIdx,
				ChunkIdx: chunkIdx,
			})
			chunkIdx++

			currentChunk.Reset()
			if overlap > 0 {
				prev := chunks[len(chunks)-1]
				overlapText := sliceSafe(text, prev.EndIdx-overlap, prev.EndIdx)
				if overlapText != "" {
					currentChunk.WriteString(overlapText)
					currentStart = prev.EndIdx - overlap
				} else {
					currentStart = sent.StartIdx
				}
			} else {
				currentStart = sent.StartIdx
			}
			currentChunk.WriteString(sentText)
		} else {
			currentChunk.WriteString(" ")
			currentChunk.WriteString(sentText)
		}
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, Chunk{
			Text:     currentChunk.String(),
			StartIdx: currentStart,
			EndIdx:   sentences[len(sentences)-1].EndIdx,
			ChunkIdx: chunkIdx,
		})
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}

	// a single run-on sentence cannot be split at sentence boundaries
	if len(chunks) == 1 && len(chunks[0].Text) > maxSize {
		fixed := &FixedSplitter{config: c.config}
		return fixed.Chunk(text, maxSize, overlap)
	}

	return chunks
}

type sentenceInfo struct {
	Text     string
	StartIdx int
	EndIdx   int
}

var sentenceEndRegex = regexp.MustCompile(`[.!?]\s*`)

func splitSentences(text string) []sentenceInfo {
	matches := sentenceEndRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []sentenceInfo{{Text: text, StartIdx: 0, EndIdx: len(text)}}
	}

	sentences := make([]sentenceInfo, 0)
	startIdx := 0

	for _, match := range matches {
		endIdx := match[1]
		sentText := strings.TrimSpace(text[startIdx:endIdx])
		if sentText != "" {
			sentences = append(sentences, sentenceInfo{
				Text:     sentText,
				StartIdx: startIdx,
				EndIdx:   endIdx,
			})
		}
		startIdx = endIdx
	}

	if startIdx < len(text) {
		remaining := strings.TrimSpace(text[startIdx:])
		if remaining != "" {
			sentences = append(sentences, sentenceInfo{
				Text:     remaining,
				StartIdx: startIdx,
				EndIdx:   len(text),
			})
		}
	}

	return sentences
}

// FixedSplitter cuts at the size cap, preferring word boundaries.
type FixedSplitter struct {
	config Config
}

func (c *FixedSplitter) Chunk(text string, maxSize, overlap int) []Chunk {
	if maxSize <= 0 {
		maxSize = c.config.MaxSize
	}
	if overlap < 0 {
		overlap = c.config.Overlap
	}

	if len(text) <= maxSize {
		return singleChunk(text)
	}

	chunks := make([]Chunk, 0)
	startIdx := 0
	chunkIdx := 0

	for startIdx < len(text) {
		endIdx := startIdx + maxSize
		if endIdx > len(text) {
			endIdx = len(text)
		}

		chunkText := text[startIdx:endIdx]
		if endIdx < len(text) {
			chunkText = truncateAtBoundary(chunkText, maxSize)
			endIdx = startIdx + len(chunkText)
		}

		chunks = append(chunks, Chunk{
			Text:     chunkText,
			StartIdx: startIdx,
			EndIdx:   endIdx,
			ChunkIdx: chunkIdx,
		})
		chunkIdx++

		startIdx = endIdx - overlap
		if startIdx <= chunks[len(chunks)-1].StartIdx {
			// overlap must never walk backwards
			startIdx = endIdx
		}
	}

	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}

	return chunks
}

var boundaryChars = map[rune]struct{}{
	' ': {}, '\n': {}, '\t': {}, '.': {}, ',': {}, '!': {}, '?': {}, ';': {},
}

// truncateAtBoundary walks back from the cap looking for a boundary rune so
// words are not cut mid-way. Falls back to a hard cut at maxLen runes.
func truncateAtBoundary(text string, maxLen int) string {
	textRunes := []rune(text)
	if len(textRunes) <= maxLen {
		return text
	}

	for i := maxLen - 1; i >= maxLen/2; i-- {
		if _, ok := boundaryChars[textRunes[i]]; ok {
			return string(textRunes[:i+1])
		}
	}
	return string(textRunes[:maxLen])
}

func singleChunk(text string) []Chunk {
	return []Chunk{{
		Text:        text,
		StartIdx:    0,
		EndIdx:      len(text),
		ChunkIdx:    0,
		TotalChunks: 1,
	}}
}

func sliceSafe(text string, startIdx, endIdx int) string {
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > len(text) {
		endIdx = len(text)
	}
	if startIdx >= endIdx {
		return ""
	}
	return text[startIdx:endIdx]
}
