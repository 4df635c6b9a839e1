package constant

import "math"

// =============================================
// Speech synthesis constants
// =============================================

// Voice is one of the synthesis voices the upstream speech API accepts.
type Voice string

const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceFable   Voice = "fable"
	VoiceOnyx    Voice = "onyx"
	VoiceNova    Voice = "nova"
	VoiceShimmer Voice = "shimmer"
)

// DefaultVoice is used when the client omits or misspells the voice.
const DefaultVoice = VoiceNova

// Speech speed multipliers accepted by the upstream API.
const (
	MinSpeechSpeed     = 0.25
	MaxSpeechSpeed     = 4.0
	DefaultSpeechSpeed = 1.0
)

// String returns the voice as a string.
func (v Voice) String() string {
	return string(v)
}

// IsValid reports whether the voice is one of the known voices.
func (v Voice) IsValid() bool {
	switch v {
	case VoiceAlloy, VoiceEcho, VoiceFable, VoiceOnyx, VoiceNova, VoiceShimmer:
		return true
	}
	return false
}

// OrDefault returns the voice, falling back to the default when unknown.
func (v Voice) OrDefault() Voice {
	if v.IsValid() {
		return v
	}
	return DefaultVoice
}

// VoiceSessionState is where a live voice session currently sits.
type VoiceSessionState string

const (
	// VoiceStateIdle means no recognition is running.
	VoiceStateIdle VoiceSessionState = "idle"
	// VoiceStateListening means the client microphone is capturing.
	VoiceStateListening VoiceSessionState = "listening"
	// VoiceStateThinking means a final transcript is with the chat relay.
	VoiceStateThinking VoiceSessionState = "thinking"
	// VoiceStateSpeaking means a reply is being synthesized or played.
	VoiceStateSpeaking VoiceSessionState = "speaking"
)

// String returns the state as a string.
func (s VoiceSessionState) String() string {
	return string(s)
}

// Client-to-server voice socket event types.
const (
	VoiceEventStart      = "start"
	VoiceEventStop       = "stop"
	VoiceEventTranscript = "transcript"
	VoiceEventError      = "error"
)

// Server-to-client voice socket event types.
const (
	VoiceEventState   = "state"
	VoiceEventReply   = "reply"
	VoiceEventRestart = "restart"
	VoiceEventGiveUp  = "giveup"
)

// Recognition failures the client reports that warrant an automatic restart.
const (
	VoiceErrorNoSpeech = "no-speech"
	VoiceErrorAborted  = "aborted"
)

// IsTransientVoiceError reports whether a recognition failure should be
// retried rather than surfaced.
func IsTransientVoiceError(reason string) bool {
	return reason == VoiceErrorNoSpeech || reason == VoiceErrorAborted
}

// ClampSpeed pins a speed multiplier into the range the upstream API accepts.
// Zero and NaN mean "unset" and map to the default speed.
func ClampSpeed(speed float64) float64 {
	if speed == 0 || math.IsNaN(speed) {
		return DefaultSpeechSpeed
	}
	if speed < MinSpeechSpeed {
		return MinSpeechSpeed
	}
	if speed > MaxSpeechSpeed {
		return MaxSpeechSpeed
	}
	return speed
}
