package router

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/controller"
	"github.com/gin-gonic/gin"
)

func addApiRouter(engine *gin.Engine) {
	api := engine.Group("/api")
	{
		// chat relay
		api.POST("/chat", controller.Chat)
		api.POST("/chat/stream", controller.ChatStream)

		// speech synthesis and the live voice session socket
		api.POST("/tts", controller.Synthesize)
		api.GET("/voice", controller.VoiceSession)

		// memory store
		api.POST("/memories", controller.CreateMemory)
		api.GET("/memories", controller.ListMemories)
		api.POST("/memories/search", controller.SearchMemories)
		api.PUT("/memories/:id", controller.UpdateMemory)
		api.DELETE("/memories/:id", controller.DeleteMemory)

		// plan tracker
		api.POST("/plans", controller.CreatePlan)
		api.GET("/plans", controller.ListPlans)
		api.GET("/plans/:id", controller.GetPlan)
		api.PUT("/plans/:id", controller.UpdatePlan)
		api.DELETE("/plans/:id", controller.DeletePlan)
		api.POST("/plans/:id/steps", controller.AddPlanStep)
		api.PUT("/plans/:id/steps/:stepId", controller.UpdatePlanStep)
		api.DELETE("/plans/:id/steps/:stepId", controller.DeletePlanStep)

		// conversation history
		api.POST("/conversations", controller.CreateConversation)
		api.GET("/conversations", controller.ListConversations)
		api.GET("/conversations/:id", controller.GetConversation)
		api.POST("/conversations/:id/messages", controller.AppendConversationMessage)
		api.DELETE("/conversations/:id", controller.DeleteConversation)

		api.GET("/health", controller.Health)
		if config.GetInstance().IsDevelopment() {
			api.GET("/debug", controller.Debug)
			api.GET("/test", controller.Test)
		}
	}
}
