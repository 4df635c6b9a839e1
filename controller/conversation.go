package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
)

// CreateConversation opens a conversation, deriving its title and emotion
// tags from any initial messages.
func CreateConversation(ctx *gin.Context) {
	var req model.CreateConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, svcErr := factory.GetServiceFactory().NewConversationService().Create(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, conversation)
}

// GetConversation returns one conversation with its full message thread.
func GetConversation(ctx *gin.Context) {
	conversation, svcErr := factory.GetServiceFactory().NewConversationService().Get(ctx, ctx.Param("id"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, conversation)
}

// ListConversations returns a user's conversations.
func ListConversations(ctx *gin.Context) {
	condition := &model.GetConversationsCondition{}
	if userID := ctx.Query("userId"); userID != "" {
		condition.UserID = &userID
	}

	conversations, svcErr := factory.GetServiceFactory().NewConversationService().List(ctx, condition)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
}

// AppendConversationMessage appends one turn to the thread. The message list
// is append-only; there is no edit or remove.
func AppendConversationMessage(ctx *gin.Context) {
	var req model.AppendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, svcErr := factory.GetServiceFactory().NewConversationService().AppendMessage(ctx, ctx.Param("id"), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, conversation)
}

// DeleteConversation removes a conversation whole.
func DeleteConversation(ctx *gin.Context) {
	if svcErr := factory.GetServiceFactory().NewConversationService().Delete(ctx, ctx.Param("id")); svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "conversation deleted"})
}
