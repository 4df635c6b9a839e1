//nolint:typecheck
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	OSConfigPath      = "CONFIG_PATH"
	DefaultConfigName = "config.yaml"
	TypeYaml          = "yaml"

	AppEnv             = "app.env"
	AppHost            = "app.host"
	AppLogRequest      = "app.log.request"
	AppLogLevel        = "app.log.level"
	AppLogReportcaller = "app.log.reportcaller"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	// Upstream OpenAI-compatible API. openai.api_key doubles as the
	// OPENAI_API_KEY environment binding through the key replacer.
	OpenAIAPIKey               = "openai.api_key"
	OpenAIBaseURL              = "openai.base_url"
	OpenAIChatModel            = "openai.chat.model"
	OpenAIChatTemperature      = "openai.chat.temperature"
	OpenAIChatMaxTokens        = "openai.chat.max_tokens"
	OpenAIChatPresencePenalty  = "openai.chat.presence_penalty"
	OpenAIChatFrequencyPenalty = "openai.chat.frequency_penalty"
	OpenAIEmbeddingModel       = "openai.embedding.model"
	OpenAIEmbeddingBaseURL     = "openai.embedding.base_url"
	OpenAIEmbeddingDimensions  = "openai.embedding.dimensions"
	OpenAITTSModel             = "openai.tts.model"
	OpenAITTSVoice             = "openai.tts.voice"

	// Storage backend selection and the hosted Postgres store.
	StorageBackend     = "storage.backend"
	BaseDbXormType     = "base.db.xorm.type"
	BaseDbXormUsername = "base.db.xorm.username"
	BaseDbXormPassword = "base.db.xorm.password"
	BaseDbXormHost     = "base.db.xorm.host"
	BaseDbXormPort     = "base.db.xorm.port"
	BaseDbXormName     = "base.db.xorm.name"
	BaseDbXormShowsql  = "base.db.xorm.showsql"

	// Redis audio cache.
	RedisClientEnabled  = "clients.redisClient.enabled"
	RedisClientDb       = "clients.redisClient.db"
	RedisClientHost     = "clients.redisClient.host"
	RedisClientPassword = "clients.redisClient.password"
	TTSCacheTTLSeconds  = "tts.cache_ttl_seconds"

	// Memory retrieval tuning.
	MemoryRetrievalLimit = "memory.retrieval_limit"
	MemoryThreshold      = "memory.threshold"
	MemoryChunkMaxSize   = "memory.chunk_max_size"
	MemoryChunkOverlap   = "memory.chunk_overlap"

	// Shared bounded-retry policy.
	RetryMaxAttempts = "retry.max_attempts"
	RetryBaseDelayMs = "retry.base_delay_ms"
)

const (
	DefaultHost                = ":3001"
	DefaultBaseURL             = "https://api.openai.com/v1"
	DefaultChatModel           = "gpt-4o-mini"
	DefaultEmbeddingModel      = "text-embedding-3-small"
	DefaultEmbeddingDimensions = 1536
	DefaultTTSModel            = "tts-1"
	DefaultTemperature         = 0.8
	DefaultMaxTokens           = 500
	DefaultPresencePenalty     = 0.6
	DefaultFrequencyPenalty    = 0.5
	DefaultMemoryLimit         = 5
	DefaultMemoryThreshold     = 0.30
	DefaultChunkMaxSize        = 1000
	DefaultChunkOverlap        = 100
	DefaultRetryMaxAttempts    = 3
	DefaultRetryBaseDelayMs    = 1000
	DefaultTTSCacheTTL         = 3600
)

var instance *config
var once sync.Once

type config struct {
	*viper.Viper
}

func GetInstance() *config {
	once.Do(func() {
		configInstance := &config{Viper: viper.New()}
		configInstance.SetConfigType(TypeYaml)

		configPath := resolveConfigPath()
		if configPath != "" {
			configInstance.SetConfigFile(configPath)
			if err := configInstance.ReadInConfig(); err != nil {
				panic(err)
			}
			log.Infof("loaded config file %s", configPath)
		} else {
			log.Info("no config file found, running on environment variables and defaults")
		}

		configInstance.AutomaticEnv()
		replacer := strings.NewReplacer(".", "_")
		configInstance.SetEnvKeyReplacer(replacer)

		instance = configInstance
	})
	return instance
}

// resolveConfigPath looks for config.yaml under CONFIG_PATH, the working
// directory, then ./config. Missing files are fine; env vars still apply.
func resolveConfigPath() string {
	if envConfigPath := os.Getenv(OSConfigPath); envConfigPath != "" {
		return fmt.Sprintf("%v/%v", envConfigPath, DefaultConfigName)
	}

	candidates := []string{
		fmt.Sprintf("./%v", DefaultConfigName),
		fmt.Sprintf("./config/%v", DefaultConfigName),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// GetHost returns the listen address. A bare PORT env var (the hosted
// deployment convention) takes precedence over app.host.
func (c *config) GetHost() string {
	if port := os.Getenv("PORT"); port != "" {
		return ":" + port
	}
	return c.GetStringOrDefault(AppHost, DefaultHost)
}

// GetEnv returns the runtime environment name, defaulting to development.
func (c *config) GetEnv() string {
	return c.GetStringOrDefault(AppEnv, EnvDevelopment)
}

// IsDevelopment reports whether debug-only surfaces should be exposed.
func (c *config) IsDevelopment() bool {
	return strings.EqualFold(c.GetEnv(), EnvDevelopment)
}

// GetOpenAIKey returns the upstream credential, or an error when unset so the
// server can fail fast before any network call.
func (c *config) GetOpenAIKey() (string, error) {
	key := c.GetString(OpenAIAPIKey)
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return key, nil
}

func (c *config) GetString(key string) string {
	return c.Viper.GetString(key)
}

func (c *config) GetStringOrDefault(key string, defaultValue string) string {
	if c.IsSet(key) {
		return c.GetString(key)
	}

	return defaultValue
}

func (c *config) GetInt(key string) int {
	return c.Viper.GetInt(key)
}

func (c *config) GetIntOrDefault(key string, defaultValue int) int {
	if c.IsSet(key) {
		return c.GetInt(key)
	}

	return defaultValue
}

func (c *config) GetBool(key string) bool {
	return c.Viper.GetBool(key)
}

func (c *config) GetBoolOrDefault(key string, defaultValue bool) bool {
	if c.IsSet(key) {
		return c.GetBool(key)
	}

	return defaultValue
}

func (c *config) GetFloat64(key string) float64 {
	return c.Viper.GetFloat64(key)
}

func (c *config) GetFloat64OrDefault(key string, defaultValue float64) float64 {
	if c.IsSet(key) {
		return c.GetFloat64(key)
	}

	return defaultValue
}
