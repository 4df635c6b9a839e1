package model

// VoiceClientEvent is one message read from the client side of a voice
// socket. Type decides which of the remaining fields are meaningful.
type VoiceClientEvent struct {
	Type       string  `json:"type"`
	Transcript string  `json:"transcript,omitempty"`
	Final      bool    `json:"final,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	Voice      string  `json:"voice,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
}

// VoiceServerEvent is one message pushed to the client side of a voice
// socket.
type VoiceServerEvent struct {
	Type    string `json:"type"`
	State   string `json:"state,omitempty"`
	Text    string `json:"text,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Format  string `json:"format,omitempty"`
	Attempt int    `json:"attempt,omitempty"`
	DelayMs int64  `json:"delayMs,omitempty"`
	Message string `json:"message,omitempty"`
}
