package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/embedding"
	projecttime "github.com/OMEGACYBER/zoxaa-aicompanion/pkg/time"
	"github.com/gin-gonic/gin"
)

// Health reports liveness plus environment metadata.
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"service":     constant.AppName,
		"version":     constant.AppVersion,
		"environment": config.GetInstance().GetEnv(),
		"timestamp":   projecttime.GetNowTimestamp(),
	})
}

// Debug exposes configuration presence flags and client counters. Values are
// booleans and counts only, never the configured secrets themselves. The
// route is registered in development environments only.
func Debug(ctx *gin.Context) {
	cfg := config.GetInstance()

	_, keyErr := cfg.GetOpenAIKey()
	payload := gin.H{
		"environment":      cfg.GetEnv(),
		"openaiKeyPresent": keyErr == nil,
		"storageBackend":   cfg.GetStringOrDefault(config.StorageBackend, constant.StorageBackendPostgres.String()),
		"redisEnabled":     cfg.GetBool(config.RedisClientEnabled),
		"host":             cfg.GetHost(),
		"chatModel":        cfg.GetStringOrDefault(config.OpenAIChatModel, config.DefaultChatModel),
		"embeddingModel":   cfg.GetStringOrDefault(config.OpenAIEmbeddingModel, config.DefaultEmbeddingModel),
		"ttsModel":         cfg.GetStringOrDefault(config.OpenAITTSModel, config.DefaultTTSModel),
		"retryMaxAttempts": cfg.GetIntOrDefault(config.RetryMaxAttempts, config.DefaultRetryMaxAttempts),
		"memoryRetrieval":  cfg.GetIntOrDefault(config.MemoryRetrievalLimit, config.DefaultMemoryLimit),
	}

	if embeddingClient, err := embedding.GetInstance(); err == nil {
		embeddingMetrics := embeddingClient.GetMetrics()
		payload["embedding"] = gin.H{
			"ingestCount": embeddingMetrics.IngestCount,
			"queryCount":  embeddingMetrics.QueryCount,
			"latencyMs":   embeddingMetrics.EmbeddingLatency.Milliseconds(),
		}
	}

	ctx.JSON(http.StatusOK, payload)
}

// Test is a development-only echo for quick connectivity checks.
func Test(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"message":   "API is working",
		"timestamp": projecttime.GetNowTimestamp(),
	})
}
