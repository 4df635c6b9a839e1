package middleware

import (
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template, so path
// parameters do not blow up label cardinality.
func Metrics(ctx *gin.Context) {
	start := time.Now()

	ctx.Next()

	path := ctx.FullPath()
	if path == "" {
		path = "unmatched"
	}
	metrics.GetInstance().RecordHTTPRequest(path, ctx.Request.Method, ctx.Writer.Status(), time.Since(start))
}
