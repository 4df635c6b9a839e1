package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/stretchr/testify/suite"
)

type SpeechClientTest struct {
	suite.Suite
}

func (s *SpeechClientTest) TestNewClientDefaults() {
	client := NewClient("https://api.example.com/v1", "test-api-key")

	s.NotNil(client)
	s.Equal("tts-1", client.config.Model)
	s.Equal(constant.DefaultVoice, client.config.DefaultVoice)
}

func (s *SpeechClientTest) TestNewClientOptions() {
	client := NewClient("https://api.example.com/v1", "test-api-key",
		WithModel("tts-1-hd"),
		WithDefaultVoice(constant.VoiceOnyx),
	)

	s.Equal("tts-1-hd", client.config.Model)
	s.Equal(constant.VoiceOnyx, client.config.DefaultVoice)
}

func (s *SpeechClientTest) TestCreateSpeechReturnsAudioBytes() {
	fakeMP3 := []byte{0x49, 0x44, 0x33, 0x04, 0x00, 0x11, 0x22, 0x33}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(fakeMP3)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-api-key")
	audio, err := client.CreateSpeech(context.Background(), "hello", constant.VoiceNova, 1.0)

	s.Nil(err)
	s.Equal(fakeMP3, audio)
}

func (s *SpeechClientTest) TestCreateSpeechRejectsEmptyText() {
	client := NewClient("https://api.example.com/v1", "test-api-key")

	_, err := client.CreateSpeech(context.Background(), "   ", constant.VoiceNova, 1.0)

	s.NotNil(err)
	var modelErr *model.Error
	s.ErrorAs(err, &modelErr)
	s.Equal(model.ErrorSpeechInput, modelErr.Code)
	s.Equal(http.StatusBadRequest, modelErr.HTTPStatus())
}

func (s *SpeechClientTest) TestCreateSpeechBadCredential() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "Incorrect API key provided",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	_, err := client.CreateSpeech(context.Background(), "hello", constant.VoiceNova, 1.0)

	s.NotNil(err)
	var modelErr *model.Error
	s.ErrorAs(err, &modelErr)
	s.Equal(model.ErrorUpstreamAuth, modelErr.Code)
}

func (s *SpeechClientTest) TestEstimateDuration() {
	// five words at 2.5 words per second
	s.InDelta(2.0, EstimateDuration("one two three four five", 1.0), 0.01)
	// double speed halves the estimate
	s.InDelta(1.0, EstimateDuration("one two three four five", 2.0), 0.01)
	s.Equal(0.0, EstimateDuration("", 1.0))
	// zero speed treated as default
	s.InDelta(2.0, EstimateDuration("one two three four five", 0), 0.01)
}

func TestSpeechClient(t *testing.T) {
	suite.Run(t, new(SpeechClientTest))
}
