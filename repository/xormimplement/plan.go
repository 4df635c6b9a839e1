package xormimplement

import (
	"fmt"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"xorm.io/builder"
)

type PlanRepository struct {
	session *Session
}

func NewPlanRepository(session *Session) repository.PlanRepository {
	return &PlanRepository{session: session}
}

func buildPlanQueryConditions(condition *model.GetPlansCondition) builder.Cond {
	var conds []builder.Cond

	if condition.UserID != nil && *condition.UserID != "" {
		conds = append(conds, builder.Eq{entity.PlanFieldUserID: *condition.UserID})
	}
	if condition.Status != nil && *condition.Status != "" {
		conds = append(conds, builder.Eq{entity.PlanFieldStatus: *condition.Status})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
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

	_, err := r.session.Table(entity.TableNamePlan).Insert(plan)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	return nil
}

func (r *PlanRepository) Get(planID string) (*entity.Plan, error) {
	if planID == "" {
		return nil, fmt.Errorf("plan id is required")
	}

	result := &entity.Plan{}
	ok, err := r.session.Table(entity.TableNamePlan).
		Where(builder.Eq{entity.PlanFieldID: planID}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *PlanRepository) List(condition *model.GetPlansCondition) ([]*entity.Plan, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildPlanQueryConditions(condition)

	session := r.session.Table(entity.TableNamePlan)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.PlanFieldCreatedAt))

	var results []*entity.Plan
	if err := session.Find(&results); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return results, nil
}

func (r *PlanRepository) Update(planID string, condition *model.UpdatePlanCondition) error {
	if planID == "" {
		return fmt.Errorf("plan id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}

	updateData := make(map[string]interface{})
	if condition.Title != nil {
		updateData[entity.PlanFieldTitle] = *condition.Title
	}
	if condition.Description != nil {
		updateData[entity.PlanFieldDescription] = *condition.Description
	}
	if condition.GoalsJSON != nil {
		updateData[entity.PlanFieldGoalsJSON] = *condition.GoalsJSON
	}
	if condition.StepsJSON != nil {
		updateData[entity.PlanFieldStepsJSON] = *condition.StepsJSON
	}
	if condition.Status != nil {
		updateData[entity.PlanFieldStatus] = *condition.Status
	}
	if condition.Completion != nil {
		updateData[entity.PlanFieldCompletion] = *condition.Completion
	}

	if len(updateData) == 0 {
		return fmt.Errorf("at least one field must be updated")
	}

	_, err := r.session.Table(entity.TableNamePlan).
		Where(builder.Eq{entity.PlanFieldID: planID}).
		Update(updateData)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}

	return nil
}

func (r *PlanRepository) Delete(planID string) error {
	if planID == "" {
		return fmt.Errorf("plan id is required")
	}

	_, err := r.session.Table(entity.TableNamePlan).
		Where(builder.Eq{entity.PlanFieldID: planID}).
		Delete(&entity.Plan{})
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}

	return nil
}
