package constant

// =============================================
// Emotion tag constants
// =============================================

// EmotionTag labels the feeling detected in a conversation exchange.
type EmotionTag string

const (
	EmotionJoy      EmotionTag = "joy"
	EmotionSadness  EmotionTag = "sadness"
	EmotionAnger    EmotionTag = "anger"
	EmotionFear     EmotionTag = "fear"
	EmotionSurprise EmotionTag = "surprise"
	EmotionLove     EmotionTag = "love"
	EmotionNeutral  EmotionTag = "neutral"
)

// AllEmotions lists every tag the detector may emit.
var AllEmotions = []EmotionTag{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionSurprise,
	EmotionLove,
	EmotionNeutral,
}

// String returns the tag as a string.
func (e EmotionTag) String() string {
	return string(e)
}

// IsValid reports whether the tag is one of the known emotions.
func (e EmotionTag) IsValid() bool {
	switch e {
	case EmotionJoy, EmotionSadness, EmotionAnger, EmotionFear, EmotionSurprise, EmotionLove, EmotionNeutral:
		return true
	}
	return false
}
