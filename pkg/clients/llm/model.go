package llm

// Config carries the upstream completion settings. Sampling parameters are
// fixed per deployment, not per request.
type Config struct {
	BaseURL          string  `json:"base_url"`
	APIKey           string  `json:"api_key"`
	ModelName        string  `json:"model_name"`
	Temperature      float32 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float32 `json:"presence_penalty"`
	FrequencyPenalty float32 `json:"frequency_penalty"`
}

// ClientParams are the required constructor arguments.
type ClientParams struct {
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key"`
	ModelName string `json:"model_name"`
}

type Option func(*Config)

func DefaultConfig() *Config {
	return &Config{
		Temperature:      0.8,
		MaxTokens:        500,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0.5,
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

func WithAPIKey(apiKey string) Option {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

func WithModelName(modelName string) Option {
	return func(c *Config) {
		c.ModelName = modelName
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.MaxTokens = maxTokens
	}
}

func WithPresencePenalty(presencePenalty float32) Option {
	return func(c *Config) {
		c.PresencePenalty = presencePenalty
	}
}

func WithFrequencyPenalty(frequencyPenalty float32) Option {
	return func(c *Config) {
		c.FrequencyPenalty = frequencyPenalty
	}
}
