package controller

import (
	"net/http"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/factory"
	"github.com/gin-gonic/gin"
)

// CreatePlan creates a plan with its initial steps.
func CreatePlan(ctx *gin.Context) {
	var req model.CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, svcErr := factory.GetServiceFactory().NewPlanService().Create(ctx, &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// GetPlan returns one plan with decoded goals and steps.
func GetPlan(ctx *gin.Context) {
	plan, svcErr := factory.GetServiceFactory().NewPlanService().Get(ctx, ctx.Param("id"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// ListPlans returns a user's plans, optionally filtered by status.
func ListPlans(ctx *gin.Context) {
	condition := &model.GetPlansCondition{}
	if userID := ctx.Query("userId"); userID != "" {
		condition.UserID = &userID
	}
	if status := ctx.Query("status"); status != "" {
		condition.Status = &status
	}

	plans, svcErr := factory.GetServiceFactory().NewPlanService().List(ctx, condition)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

// UpdatePlan rewrites plan fields. Completion is never accepted from the
// body; it is recomputed whenever the steps change.
func UpdatePlan(ctx *gin.Context) {
	var req model.UpdatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, svcErr := factory.GetServiceFactory().NewPlanService().Update(ctx, ctx.Param("id"), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// DeletePlan removes a plan and its steps.
func DeletePlan(ctx *gin.Context) {
	if svcErr := factory.GetServiceFactory().NewPlanService().Delete(ctx, ctx.Param("id")); svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "plan deleted"})
}

// AddPlanStep appends a step and recomputes completion.
func AddPlanStep(ctx *gin.Context) {
	var req model.AddStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, svcErr := factory.GetServiceFactory().NewPlanService().AddStep(ctx, ctx.Param("id"), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// UpdatePlanStep edits or toggles one step and recomputes completion.
func UpdatePlanStep(ctx *gin.Context) {
	var req model.UpdateStepRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, svcErr := factory.GetServiceFactory().NewPlanService().UpdateStep(ctx, ctx.Param("id"), ctx.Param("stepId"), &req)
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}

// DeletePlanStep removes one step and recomputes completion.
func DeletePlanStep(ctx *gin.Context) {
	plan, svcErr := factory.GetServiceFactory().NewPlanService().DeleteStep(ctx, ctx.Param("id"), ctx.Param("stepId"))
	if svcErr != nil {
		fail(ctx, svcErr)
		return
	}

	ctx.JSON(http.StatusOK, plan)
}
