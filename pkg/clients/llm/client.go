package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/httptool"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	clientNameChatModel = "chat_model"
)

var (
	streamMessageStart = []byte("data: ")
	streamMessageEnd   = []byte("\n\n")
)

// Client relays chat completions to the upstream OpenAI-compatible API.
type Client struct {
	config *Config
	client *openai.Client
}

var (
	instance    *Client
	instanceErr error
	once        sync.Once
)

// GetInstance builds the shared client from configuration. A missing
// credential is a config error before any network call is made.
func GetInstance() (*Client, error) {
	once.Do(func() {
		apiKey, err := config.GetInstance().GetOpenAIKey()
		if err != nil {
			instanceErr = model.NewError(model.ErrorConfig, err)
			return
		}

		conf := config.GetInstance()
		instance = NewClientWithConfig(&Config{
			BaseURL:          conf.GetStringOrDefault(config.OpenAIBaseURL, config.DefaultBaseURL),
			APIKey:           apiKey,
			ModelName:        conf.GetStringOrDefault(config.OpenAIChatModel, config.DefaultChatModel),
			Temperature:      cast.ToFloat32(conf.GetFloat64OrDefault(config.OpenAIChatTemperature, config.DefaultTemperature)),
			MaxTokens:        conf.GetIntOrDefault(config.OpenAIChatMaxTokens, config.DefaultMaxTokens),
			PresencePenalty:  cast.ToFloat32(conf.GetFloat64OrDefault(config.OpenAIChatPresencePenalty, config.DefaultPresencePenalty)),
			FrequencyPenalty: cast.ToFloat32(conf.GetFloat64OrDefault(config.OpenAIChatFrequencyPenalty, config.DefaultFrequencyPenalty)),
		})
	})
	return instance, instanceErr
}

// NewClient requires baseURL, apiKey and modelName; the sampling defaults
// apply unless overridden by options.
func NewClient(baseURL, apiKey, modelName string, opts ...Option) *Client {
	params := ClientParams{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
	}
	return NewClientWithParams(params, opts...)
}

func NewClientWithParams(params ClientParams, opts ...Option) *Client {
	config := DefaultConfig()
	config.BaseURL = params.BaseURL
	config.APIKey = params.APIKey
	config.ModelName = params.ModelName

	for _, opt := range opts {
		opt(config)
	}

	return NewClientWithConfig(config)
}

func NewClientWithConfig(config *Config) *Client {
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

func (c *Client) buildRequest(messages []openai.ChatCompletionMessage, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:            c.config.ModelName,
		Messages:         messages,
		MaxTokens:        c.config.MaxTokens,
		Temperature:      c.config.Temperature,
		PresencePenalty:  c.config.PresencePenalty,
		FrequencyPenalty: c.config.FrequencyPenalty,
		Stream:           stream,
	}
}

// PostChatCompletions relays the completion as an SSE stream written to the
// gin response.
func (c *Client) PostChatCompletions(ctx *context.Context, messages []openai.ChatCompletionMessage) error {
	ginCtx, ok := (*ctx).(*gin.Context)
	if !ok {
		return model.NewError(model.ErrorParams, nil)
	}

	stream, err := c.client.CreateChatCompletionStream(ginCtx, c.buildRequest(messages, true))
	if err != nil {
		log.Errorf("%s stream creation error: %v", clientNameChatModel, err)
		return c.normalizeError(err)
	}

	ginCtx.Writer.Header().Set(httptool.HeaderContentType, httptool.HeaderContentTypeStream)
	ginCtx.Writer.Header().Set(httptool.HeaderContentCache, httptool.HeaderContentCacheNo)
	ginCtx.Writer.Header().Set(httptool.HeaderContentConnection, httptool.HeaderContentKeepAlive)
	ginCtx.Writer.Header().Set(httptool.HeaderContentTransfer, httptool.HeaderContentChunked)

	ginCtx.Writer.Flush()

	defer tools.ErrorWithPrintContext(stream.Close, "close stream")

	ginCtx.Stream(func(w io.Writer) bool {
		var respMsg bytes.Buffer

		response, err := stream.Recv()
		if err == io.EOF {
			return false
		}
		if err != nil {
			log.Errorf("%s stream.Recv error: %v", clientNameChatModel, err)
			return false
		}

		if len(response.Choices) > 0 {
			respMsg.Write(streamMessageStart)
			temp, err := json.Marshal(response.Choices)
			if err != nil {
				log.Errorf("%s: %+v json.Marshal error: %v", clientNameChatModel, response.Choices, err)
				return false
			}

			respMsg.Write(temp)
			respMsg.Write(streamMessageEnd)

			_, err = w.Write(respMsg.Bytes())
			if err != nil {
				log.Errorf("%s: %+v w.Write error: %v", clientNameChatModel, respMsg.String(), err)
				return false
			}
			ginCtx.Writer.Flush()
		}
		return true
	})

	metrics.GetInstance().RecordUpstream(metrics.TargetChat, metrics.OutcomeOK)
	return nil
}

// PostChatCompletionsNonStream returns the full upstream response.
func (c *Client) PostChatCompletionsNonStream(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionResponse, error) {
	request := c.buildRequest(messages, false)

	if log.GetLevel() == log.DebugLevel {
		requestJson, err := json.MarshalIndent(request, "", "  ")
		if err != nil {
			log.Errorf("%s chat completion request json marshal error: %v", clientNameChatModel, err)
			return nil, err
		}
		// formatted JSON straight to stdout so the log formatter does not escape newlines
		if _, err := fmt.Fprintf(os.Stdout, "[DEBUG] %s chat completion request:\n%s\n", clientNameChatModel, string(requestJson)); err != nil {
			log.Warnf("%s failed to write debug output: %v", clientNameChatModel, err)
		}
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		log.Errorf("%s chat completion error: %v", clientNameChatModel, err)
		return nil, c.normalizeError(err)
	}

	if log.GetLevel() == log.DebugLevel {
		responseJson, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			log.Errorf("%s chat completion response json marshal error: %v", clientNameChatModel, err)
		} else {
			if _, err := fmt.Fprintf(os.Stdout, "[DEBUG] %s chat completion response:\n%s\n", clientNameChatModel, string(responseJson)); err != nil {
				log.Warnf("%s failed to write debug output: %v", clientNameChatModel, err)
			}
		}
	}

	metrics.GetInstance().RecordUpstream(metrics.TargetChat, metrics.OutcomeOK)
	return &response, nil
}

// PostChatCompletionsNonStreamContent returns only the first choice content.
func (c *Client) PostChatCompletionsNonStreamContent(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	response, err := c.PostChatCompletionsNonStream(ctx, messages)
	if err != nil {
		return "", err
	}

	if response == nil {
		log.Errorf("%s chat completion response is nil", clientNameChatModel)
		return "", fmt.Errorf("chat completion response is nil")
	}

	if len(response.Choices) == 0 {
		log.Errorf("%s chat completion response has no choices", clientNameChatModel)
		return "", fmt.Errorf("chat completion response has no choices")
	}

	content := response.Choices[0].Message.Content
	if content == "" {
		log.Warnf("%s chat completion response content is empty", clientNameChatModel)
	}

	return content, nil
}

// normalizeError folds upstream SDK failures into the error taxonomy: bad
// credential, rate limit, or generic upstream failure with the upstream
// message attached.
func (c *Client) normalizeError(err error) error {
	normalized := NormalizeUpstreamError(err)
	metrics.GetInstance().RecordUpstream(metrics.TargetChat, outcomeOf(normalized))
	return normalized
}

func NormalizeUpstreamError(err error) *model.Error {
	if err == nil {
		return nil
	}

	var modelErr *model.Error
	if errors.As(err, &modelErr) {
		return modelErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.NewError(model.ErrorUpstreamAuth, err)
		case http.StatusTooManyRequests:
			return model.NewError(model.ErrorUpstreamRateLimit, err)
		}
		return model.NewErrorWithMessage(model.ErrorUpstream, apiErr.Message)
	}

	// non-JSON upstream error bodies surface as RequestError
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.NewError(model.ErrorUpstreamAuth, err)
		case http.StatusTooManyRequests:
			return model.NewError(model.ErrorUpstreamRateLimit, err)
		}
	}
	return model.NewError(model.ErrorUpstream, err)
}

func outcomeOf(err *model.Error) string {
	switch err.Code {
	case model.ErrorUpstreamAuth:
		return metrics.OutcomeAuth
	case model.ErrorUpstreamRateLimit:
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}
