// Package controller holds the gin handlers for the HTTP API. Handlers bind
// and hand off to services; all domain validation lives in the service layer.
package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// fail writes a service error as the structured JSON error response.
func fail(ctx *gin.Context, svcErr *model.Error) {
	ctx.JSON(svcErr.HTTPStatus(), gin.H{"error": svcErr.Message})
}

// failUnavailable reports a service that could not be constructed, which
// means the server is misconfigured rather than the request being bad.
func failUnavailable(ctx *gin.Context, err error) {
	log.Errorf("service unavailable: %v", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": model.ErrorMessages[model.ErrorConfig]})
}
