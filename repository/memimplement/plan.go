package memimplement

import (
	"fmt"
	"sort"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

type PlanRepository struct {
	factory *Factory
	session *Session
}

func (r *PlanRepository) Insert(plan *entity.Plan) error {
	if plan == nil {
		return fmt.Errorf("plan cannot be nil")
	}
	if plan.ID == "" {
		return fmt.Errorf("plan id is required")
	}
	if plan.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	if _, exists := r.factory.plans[plan.ID]; exists {
		return fmt.Errorf("plan already exists: %s", plan.ID)
	}

	now := time.Now()
	clone := *plan
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = now
	}
	r.factory.plans[clone.ID] = &clone

	return nil
}

func (r *PlanRepository) Get(planID string) (*entity.Plan, error) {
	if planID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	r.factory.mu.RLock()
	defer r.factory.mu.RUnlock()

	stored, ok := r.factory.plans[planID]
	if !ok {
		return nil, nil
	}

	clone := *stored
	return &clone, nil
}

func (r *PlanRepository) List(condition *model.GetPlansCondition) ([]*entity.Plan, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	r.factory.mu.RLock()
	results := make([]*entity.Plan, 0, len(r.factory.plans))
	for _, stored := range r.factory.plans {
		if condition.UserID != nil && *condition.UserID != "" && stored.UserID != *condition.UserID {
			continue
		}
		if condition.Status != nil && *condition.Status != "" && stored.Status != *condition.Status {
			continue
		}
		clone := *stored
		results = append(results, &clone)
	}
	r.factory.mu.RUnlock()

	field, asc := orderSpec(condition.GetOrder(), entity.PlanFieldCreatedAt)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !asc {
			a, b = b, a
		}
		switch field {
		case entity.PlanFieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case entity.PlanFieldCompletion:
			return a.Completion < b.Completion
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	start, end := pageBounds(condition.GetPager(), len(results))
	return results[start:end], nil
}

func (r *PlanRepository) Update(planID string, condition *model.UpdatePlanCondition) error {
	if planID == "" {
		return fmt.Errorf("plan id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}
	if condition.Title == nil && condition.Description == nil && condition.GoalsJSON == nil &&
		condition.StepsJSON == nil && condition.Status == nil && condition.Completion == nil {
		return fmt.Errorf("at least one field must be updated")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	stored, ok := r.factory.plans[planID]
	if !ok {
		return nil
	}

	if condition.Title != nil {
		stored.Title = *condition.Title
	}
	if condition.Description != nil {
		stored.Description = *condition.Description
	}
	if condition.GoalsJSON != nil {
		stored.GoalsJSON = *condition.GoalsJSON
	}
	if condition.StepsJSON != nil {
		stored.StepsJSON = *condition.StepsJSON
	}
	if condition.Status != nil {
		stored.Status = *condition.Status
	}
	if condition.Completion != nil {
		stored.Completion = *condition.Completion
	}
	stored.UpdatedAt = time.Now()

	return nil
}

func (r *PlanRepository) Delete(planID string) error {
	if planID == "" {
		return fmt.Errorf("plan id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	delete(r.factory.plans, planID)
	return nil
}
