package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
)

// Synthesize turns text into base64 MP3 audio.
func Synthesize(ctx *gin.Context) {
	var req model.SpeakRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	svc, err := factory.GetServiceFactory().NewSpeechService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	res, svcErr := svc.Synthesize(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
