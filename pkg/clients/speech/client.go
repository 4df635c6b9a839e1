package speech

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/llm"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const (
	clientNameSpeech = "speech_model"

	// rough speaking rate of the upstream voices, used only for the
	// duration estimate reported to the client
	wordsPerSecond = 2.5
)

// Client relays speech synthesis to the upstream TTS endpoint and returns
// raw MP3 bytes.
type Client struct {
	config *Config
	client *openai.Client
}

var (
	instance    *Client
	instanceErr error
	once        sync.Once
)

func GetInstance() (*Client, error) {
	once.Do(func() {
		apiKey, err := config.GetInstance().GetOpenAIKey()
		if err != nil {
			instanceErr = model.NewError(model.ErrorConfig, err)
			return
		}

		conf := config.GetInstance()
		instance = NewClient(
			conf.GetStringOrDefault(config.OpenAIBaseURL, config.DefaultBaseURL),
			apiKey,
			WithModel(conf.GetStringOrDefault(config.OpenAITTSModel, config.DefaultTTSModel)),
			WithDefaultVoice(constant.Voice(conf.GetStringOrDefault(config.OpenAITTSVoice, constant.DefaultVoice.String()))),
		)
	})
	return instance, instanceErr
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	config := DefaultConfig()
	config.BaseURL = baseURL
	config.APIKey = apiKey

	for _, opt := range opts {
		opt(config)
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Client{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *Client) GetConfig() *Config {
	return c.config
}

// CreateSpeech synthesizes text with an already-normalized voice and speed.
// Callers clamp speed and validate length before reaching here.
func (c *Client) CreateSpeech(ctx context.Context, text string, voice constant.Voice, speed float64) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, model.NewError(model.ErrorSpeechInput, nil)
	}

	if !voice.IsValid() {
		voice = c.config.DefaultVoice.OrDefault()
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		log.Errorf("%s synthesis error: %v", clientNameSpeech, err)
		return nil, c.normalizeError(err)
	}
	defer tools.ErrorWithPrintContext(resp.Close, "close speech response")

	audio, err := io.ReadAll(resp)
	if err != nil {
		log.Errorf("%s read audio error: %v", clientNameSpeech, err)
		return nil, c.normalizeError(err)
	}

	metrics.GetInstance().RecordUpstream(metrics.TargetSpeech, metrics.OutcomeOK)
	return audio, nil
}

// EstimateDuration guesses playback seconds from word count and speed.
func EstimateDuration(text string, speed float64) float64 {
	if speed <= 0 {
		speed = constant.DefaultSpeechSpeed
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return float64(words) / (wordsPerSecond * speed)
}

func (c *Client) normalizeError(err error) error {
	normalized := llm.NormalizeUpstreamError(err)
	outcome := metrics.OutcomeError
	switch normalized.Code {
	case model.ErrorUpstreamAuth:
		outcome = metrics.OutcomeAuth
	case model.ErrorUpstreamRateLimit:
		outcome = metrics.OutcomeRateLimited
	}
	metrics.GetInstance().RecordUpstream(metrics.TargetSpeech, outcome)
	return normalized
}
