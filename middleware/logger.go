package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/str"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RequestIDHeader    = "X-Request-ID"
	RequestIDInLogName = "request_id"

	// loggedBodyLimit caps how much of a request body lands in the log.
	loggedBodyLimit = 512
)

// Logger tags every request with an ID and logs method, status, latency and
// client IP once the handler chain finishes. Request bodies are captured only
// when app.log.request is set, and never for websocket upgrades.
func Logger(ctx *gin.Context) {
	start := time.Now().UTC()
	path := ctx.Request.URL.Path

	requestID := ctx.GetHeader(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx.Set(RequestIDHeader, requestID)
	ctx.Writer.Header().Set(RequestIDHeader, requestID)

	request := ""
	if config.GetInstance().GetBool(config.AppLogRequest) && ctx.Request.Body != nil && !ctx.IsWebsocket() {
		bodyBytes, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			logrus.Errorf("read body bytes err:%v", err)
		} else {
			ctx.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			request = str.Truncate(string(bodyBytes), loggedBodyLimit)
		}
	}

	ip := ctx.ClientIP()

	ctx.Next()

	latency := time.Now().UTC().Sub(start)
	entry := logrus.WithField(RequestIDInLogName, requestID)
	if request == "" {
		entry.Infof("%s| %d| %s| %s| %s", ctx.Request.Method, ctx.Writer.Status(), latency, ip, path)
	} else {
		entry.Infof("%s| %d| %s| %s| %s |request: %s", ctx.Request.Method, ctx.Writer.Status(), latency, ip, path, request)
	}
}
