package repository

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

// PlanRepository persists tracked plans and their step lists.
type PlanRepository interface {
	// Insert stores a new plan.
	Insert(plan *entity.Plan) error
	// Get fetches a single plan, nil when absent.
	Get(planID string) (*entity.Plan, error)
	// List returns plans matching the condition, newest first by default.
	List(condition *model.GetPlansCondition) ([]*entity.Plan, error)
	// Update patches the mutable columns, nil fields stay untouched.
	Update(planID string, condition *model.UpdatePlanCondition) error
	// Delete removes a plan.
	Delete(planID string) error
}
