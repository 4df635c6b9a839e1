package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
)

// CreateMemory stores one remembered fact for a user.
func CreateMemory(ctx *gin.Context) {
	var req model.CreateMemoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := factory.GetServiceFactory().NewMemoryService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	memory, svcErr := svc.Remember(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, memory)
}

// ListMemories returns every memory stored for a user.
func ListMemories(ctx *gin.Context) {
	condition := &model.GetMemoriesCondition{}
	if userID := ctx.Query("userId"); userID != "" {
		condition.UserID = &userID
	}

	svc, err := factory.GetServiceFactory().NewMemoryService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	memories, svcErr := svc.List(ctx, condition)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"memories": memories, "count": len(memories)})
}

// SearchMemories retrieves the memories most relevant to a query, by
// embedding similarity when available and keyword match otherwise.
func SearchMemories(ctx *gin.Context) {
	var req model.SearchMemoriesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := factory.GetServiceFactory().NewMemoryService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	results, svcErr := svc.Search(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// UpdateMemory rewrites a stored memory, re-embedding changed content.
func UpdateMemory(ctx *gin.Context) {
	id := ctx.Param("id")

	var req model.CreateMemoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := factory.GetServiceFactory().NewMemoryService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	memory, svcErr := svc.Update(ctx, id, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, memory)
}

// DeleteMemory removes one memory.
func DeleteMemory(ctx *gin.Context) {
	id := ctx.Param("id")

	svc, err := factory.GetServiceFactory().NewMemoryService()
	if err != nil {
		failUnavailable(ctx, err)
		return
	}

	if svcErr := svc.Delete(ctx, id); svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "memory deleted"})
}
