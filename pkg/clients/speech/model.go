package speech

import "github.com/OMEGACYBER/zoxaa-aicompanion/constant"

// Config carries the upstream speech synthesis settings.
type Config struct {
	BaseURL      string         `json:"base_url"`
	APIKey       string         `json:"api_key"`
	Model        string         `json:"model"`
	DefaultVoice constant.Voice `json:"default_voice"`
}

type Option func(*Config)

func DefaultConfig() *Config {
	return &Config{
		Model:        "tts-1",
		DefaultVoice: constant.DefaultVoice,
	}
}

func WithModel(modelName string) Option {
	return func(c *Config) {
		c.Model = modelName
	}
}

func WithDefaultVoice(voice constant.Voice) Option {
	return func(c *Config) {
		c.DefaultVoice = voice
	}
}
