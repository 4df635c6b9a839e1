package model

// SpeakRequest is the body of POST /api/tts. Voice and speed are optional and
// normalized into the supported set before the upstream call.
type SpeakRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
}

// SpeakResponse carries the synthesized audio back to the browser. Audio is
// base64-encoded MP3 and Size is the byte length of the decoded payload.
type SpeakResponse struct {
	Audio    string  `json:"audio"`
	Format   string  `json:"format"`
	Size     int     `json:"size"`
	Duration float64 `json:"duration"`
	Voice    string  `json:"voice"`
	Speed    float64 `json:"speed"`
}
