package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	appmetrics "github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/retry"
	"github.com/dgraph-io/ristretto"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	log "github.com/sirupsen/logrus"
)

const (
	// MaxBatchSize caps how many texts go upstream in one request
	MaxBatchSize = 64
	// CacheCapacity bounds the embedding cache in entries
	CacheCapacity = 5000
)

var (
	instance *Client
	once     sync.Once
	initErr  error
)

// Client fetches text embeddings with batching, a shared retry policy and
// an in-process cache keyed by exact text.
type Client struct {
	client     openai.Client
	modelName  string
	dimensions int
	cache      *ristretto.Cache
	policy     retry.Policy
	metrics    *Metrics
}

// Metrics tracks rough client-side counters for the debug surface.
type Metrics struct {
	IngestCount      int64
	QueryCount       int64
	EmbeddingLatency time.Duration
	mu               sync.Mutex
}

// GetInstance builds the shared embedding client from configuration.
func GetInstance() (*Client, error) {
	once.Do(func() {
		cfg := config.GetInstance()

		apiKey, err := cfg.GetOpenAIKey()
		if err != nil {
			initErr = err
			return
		}

		modelName := cfg.GetStringOrDefault(config.OpenAIEmbeddingModel, config.DefaultEmbeddingModel)
		baseURL := cfg.GetStringOrDefault(config.OpenAIEmbeddingBaseURL, "")
		dimensions := cfg.GetIntOrDefault(config.OpenAIEmbeddingDimensions, config.DefaultEmbeddingDimensions)
		policy := retry.NewPolicy(
			cfg.GetIntOrDefault(config.RetryMaxAttempts, config.DefaultRetryMaxAttempts),
			time.Duration(cfg.GetIntOrDefault(config.RetryBaseDelayMs, config.DefaultRetryBaseDelayMs))*time.Millisecond,
		)

		instance, initErr = NewClient(apiKey, modelName, baseURL, dimensions, policy)
	})

	return instance, initErr
}

// NewClient builds an embedding client. baseURL may be empty for the
// default upstream; dimensions is the fixed output dimensionality of the
// chosen model.
func NewClient(apiKey, modelName, baseURL string, dimensions int, policy retry.Policy) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// the retry policy owns retries, not the SDK
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: CacheCapacity * 10,
		MaxCost:     CacheCapacity,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding cache: %w", err)
	}

	return &Client{
		client:     openai.NewClient(opts...),
		modelName:  modelName,
		dimensions: dimensions,
		cache:      cache,
		policy:     policy,
		metrics:    &Metrics{},
	}, nil
}

// Dimensions returns the fixed output dimensionality of the model.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// GetTextEmbedding fetches one embedding, served from cache when possible.
func (c *Client) GetTextEmbedding(ctx context.Context, text string) ([]float64, error) {
	embeddings, err := c.GetTextEmbeddingBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return embeddings[0], nil
}

// GetTextEmbeddingBatch fetches embeddings for all texts, splitting into
// MaxBatchSize requests and filling cache hits without going upstream.
func (c *Client) GetTextEmbeddingBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	c.metrics.mu.Lock()
	c.metrics.QueryCount++
	c.metrics.mu.Unlock()

	startTime := time.Now()
	defer func() {
		c.metrics.mu.Lock()
		c.metrics.EmbeddingLatency += time.Since(startTime)
		c.metrics.mu.Unlock()
	}()

	type textWithIndex struct {
		text  string
		index int
	}
	needRequest := make([]textWithIndex, 0)
	result := make([][]float64, len(texts))
	cacheHits := 0

	for i, text := range texts {
		if cached, ok := c.cache.Get(text); ok {
			if vec, ok := cached.([]float64); ok {
				result[i] = vec
				cacheHits++
				continue
			}
		}
		needRequest = append(needRequest, textWithIndex{text: text, index: i})
	}

	if len(needRequest) == 0 {
		log.Debugf("all embeddings served from cache (count: %d)", len(texts))
		return result, nil
	}

	for i := 0; i < len(needRequest); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(needRequest) {
			end = len(needRequest)
		}

		batch := needRequest[i:end]
		batchTexts := make([]string, len(batch))
		for j, item := range batch {
			batchTexts[j] = item.text
		}

		var embeddings [][]float64
		err := c.policy.Do(ctx, "embedding request", func() error {
			var innerErr error
			embeddings, innerErr = c.getTextEmbeddingBatchOnce(ctx, batchTexts)
			return innerErr
		})
		if err != nil {
			appmetrics.GetInstance().RecordUpstream(appmetrics.TargetEmbedding, appmetrics.OutcomeError)
			return nil, fmt.Errorf("failed to get embeddings for batch %d-%d: %w", i, end, err)
		}

		for j, item := range batch {
			if j < len(embeddings) {
				result[item.index] = embeddings[j]
				c.cache.Set(item.text, embeddings[j], 1)
			}
		}
		// make buffered writes visible before the next lookup
		c.cache.Wait()
	}

	log.Debugf("embedding batch completed: total=%d, cache_hits=%d, requests=%d",
		len(texts), cacheHits, len(needRequest))

	c.metrics.mu.Lock()
	c.metrics.IngestCount += int64(len(needRequest))
	c.metrics.mu.Unlock()

	appmetrics.GetInstance().RecordUpstream(appmetrics.TargetEmbedding, appmetrics.OutcomeOK)
	return result, nil
}

func (c *Client) getTextEmbeddingBatchOnce(ctx context.Context, texts []string) ([][]float64, error) {
	input := openai.EmbeddingNewParamsInputUnion{
		OfArrayOfStrings: texts,
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.modelName),
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	result := make([][]float64, 0, len(resp.Data))
	for _, item := range resp.Data {
		result = append(result, item.Embedding)
	}

	return result, nil
}

// GetMetrics returns a copy of the client-side counters.
func (c *Client) GetMetrics() Metrics {
	c.metrics.mu.Lock()
	defer c.metrics.mu.Unlock()
	return Metrics{
		IngestCount:      c.metrics.IngestCount,
		QueryCount:       c.metrics.QueryCount,
		EmbeddingLatency: c.metrics.EmbeddingLatency,
	}
}
