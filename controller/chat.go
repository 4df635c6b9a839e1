package controller

import (
	"context"
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
)

// Chat relays one exchange to the upstream completions API and returns the
// reply with token usage.
func Chat(ctx *gin.Context) {
	var req model.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "messages array is required"})
		return
	}

	svc, err := factory.GetServiceFactory().NewChatService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	res, svcErr := svc.Complete(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

// ChatStream relays the exchange as an SSE stream written straight to the
// response.
func ChatStream(ctx *gin.Context) {
	var req model.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "messages array is required"})
		return
	}

	svc, err := factory.GetServiceFactory().NewChatService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	var streamCtx context.Context = ctx
	if svcErr := svc.CompleteStream(&streamCtx, &req); svcErr != nil {
		fail(ctx, svcErr)
	}
}
