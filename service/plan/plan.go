package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	projecttime "github.com/OMEGACYBER/zoxaa-aicompanion/pkg/time"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/interfaces"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
)

// Service owns plan tracking. Completion percentage is always derived from
// the steps; nothing a client sends can set it directly.
type Service struct {
	repositoryFactory factory.Factory
}

func NewService(repositoryFactory factory.Factory) *Service {
	serviceOnce.Do(func() {
		instance = NewServiceWithFactory(repositoryFactory)
	})
	return instance
}

// NewServiceWithFactory wires a service instance directly, bypassing the
// singleton.
func NewServiceWithFactory(repositoryFactory factory.Factory) *Service {
	return &Service{repositoryFactory: repositoryFactory}
}

// Create stores a new plan in the active state with its completion derived
// from the provided steps.
func (s *Service) Create(ctx context.Context, req *model.CreatePlanRequest) (*model.PlanResponse, *model.Error) {
	if req == nil || req.UserID == "" || strings.TrimSpace(req.Title) == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId and title are required"))
	}
	steps, svcErr := normalizeSteps(req.Steps)
	if svcErr != nil {
		return nil, svcErr
	}

	plan := &entity.Plan{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		GoalsJSON:   tools.MarshalTags(req.Goals),
		StepsJSON:   marshalSteps(steps),
		Status:      constant.PlanStatusActive.String(),
		Completion:  computeCompletion(steps),
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	if err := s.newPlanRepository(session).Insert(plan); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("insert plan: %w", err))
	}
	log.Infof("created plan %s for user %s (%d steps)", plan.ID, plan.UserID, len(steps))
	return toResponse(plan), nil
}

// Get returns one plan with decoded goals and steps.
func (s *Service) Get(ctx context.Context, id string) (*model.PlanResponse, *model.Error) {
	if id == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("plan id is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	plan, svcErr := s.get(session, id)
	if svcErr != nil {
		return nil, svcErr
	}
	return toResponse(plan), nil
}

// List returns a user's plans, optionally filtered by lifecycle status.
func (s *Service) List(ctx context.Context, condition *model.GetPlansCondition) ([]*model.PlanResponse, *model.Error) {
	if condition == nil || condition.UserID == nil || *condition.UserID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId is required"))
	}
	if condition.Status != nil && !constant.PlanStatus(*condition.Status).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown plan status %q", *condition.Status))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	plans, err := s.newPlanRepository(session).List(condition)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("list plans: %w", err))
	}

	responses := make([]*model.PlanResponse, 0, len(plans))
	for _, p := range plans {
		responses = append(responses, toResponse(p))
	}
	return responses, nil
}

// Update mutates plan fields. Replacing the steps recomputes completion; a
// client-supplied completion value has no field to arrive through.
func (s *Service) Update(ctx context.Context, id string, req *model.UpdatePlanRequest) (*model.PlanResponse, *model.Error) {
	if id == "" || req == nil {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("plan id is required"))
	}
	if req.Status != nil && !constant.PlanStatus(*req.Status).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown plan status %q", *req.Status))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	planRepository := s.newPlanRepository(session)

	if _, svcErr := s.get(session, id); svcErr != nil {
		return nil, svcErr
	}

	condition := &model.UpdatePlanCondition{Status: req.Status}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, model.NewError(model.ErrorParams, fmt.Errorf("title cannot be empty"))
		}
		condition.Title = &title
	}
	condition.Description = req.Description
	if req.Goals != nil {
		goalsJSON := tools.MarshalTags(*req.Goals)
		condition.GoalsJSON = &goalsJSON
	}
	if req.Steps != nil {
		steps, svcErr := normalizeSteps(*req.Steps)
		if svcErr != nil {
			return nil, svcErr
		}
		stepsJSON := marshalSteps(steps)
		completion := computeCompletion(steps)
		condition.StepsJSON = &stepsJSON
		condition.Completion = &completion
	}
	if condition.Title == nil && condition.Description == nil && condition.Status == nil &&
		condition.GoalsJSON == nil && condition.StepsJSON == nil {
		plan, svcErr := s.get(session, id)
		if svcErr != nil {
			return nil, svcErr
		}
		return toResponse(plan), nil
	}

	if err := planRepository.Update(id, condition); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("update plan: %w", err))
	}
	plan, svcErr := s.get(session, id)
	if svcErr != nil {
		return nil, svcErr
	}
	return toResponse(plan), nil
}

// Delete removes one plan.
func (s *Service) Delete(ctx context.Context, id string) *model.Error {
	if id == "" {
		return model.NewError(model.ErrorParams, fmt.Errorf("plan id is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	planRepository := s.newPlanRepository(session)

	if _, svcErr := s.get(session, id); svcErr != nil {
		return svcErr
	}
	if err := planRepository.Delete(id); err != nil {
		return model.NewError(model.ErrorDB, fmt.Errorf("delete plan: %w", err))
	}
	return nil
}

// AddStep appends one step to a plan and recomputes completion.
func (s *Service) AddStep(ctx context.Context, planID string, req *model.AddStepRequest) (*model.PlanResponse, *model.Error) {
	if planID == "" || req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("plan id and step text are required"))
	}
	if req.Priority != "" && !constant.StepPriority(req.Priority).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown step priority %q", req.Priority))
	}

	step := model.PlanStep{
		ID:       uuid.NewString(),
		Text:     strings.TrimSpace(req.Text),
		Priority: constant.StepPriority(req.Priority).OrDefault().String(),
		DueDate:  req.DueDate,
	}
	return s.mutateSteps(ctx, planID, func(steps []model.PlanStep) ([]model.PlanStep, *model.Error) {
		return append(steps, step), nil
	})
}

// UpdateStep mutates one step in place and recomputes completion.
func (s *Service) UpdateStep(ctx context.Context, planID, stepID string, req *model.UpdateStepRequest) (*model.PlanResponse, *model.Error) {
	if planID == "" || stepID == "" || req == nil {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("plan id and step id are required"))
	}
	if req.Priority != nil && !constant.StepPriority(*req.Priority).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown step priority %q", *req.Priority))
	}

	return s.mutateSteps(ctx, planID, func(steps []model.PlanStep) ([]model.PlanStep, *model.Error) {
		for i := range steps {
			if steps[i].ID != stepID {
				continue
			}
			if req.Text != nil {
				text := strings.TrimSpace(*req.Text)
				if text == "" {
					return nil, model.NewError(model.ErrorParams, fmt.Errorf("step text cannot be empty"))
				}
				steps[i].Text = text
			}
			if req.Completed != nil {
				steps[i].Completed = *req.Completed
			}
			if req.Priority != nil {
				steps[i].Priority = *req.Priority
			}
			if req.DueDate != nil {
				steps[i].DueDate = req.DueDate
			}
			return steps, nil
		}
		return nil, model.NewError(model.ErrorNotFound, fmt.Errorf("step %s not found in plan %s", stepID, planID))
	})
}

// DeleteStep removes one step and recomputes completion.
func (s *Service) DeleteStep(ctx context.Context, planID, stepID string) (*model.PlanResponse, *model.Error) {
	if planID == "" || stepID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("plan id and step id are required"))
	}

	return s.mutateSteps(ctx, planID, func(steps []model.PlanStep) ([]model.PlanStep, *model.Error) {
		for i := range steps {
			if steps[i].ID == stepID {
				return append(steps[:i], steps[i+1:]...), nil
			}
		}
		return nil, model.NewError(model.ErrorNotFound, fmt.Errorf("step %s not found in plan %s", stepID, planID))
	})
}

// mutateSteps loads a plan's steps, applies mutate, and writes the new list
// back together with the recomputed completion.
func (s *Service) mutateSteps(ctx context.Context, planID string,
	mutate func([]model.PlanStep) ([]model.PlanStep, *model.Error)) (*model.PlanResponse, *model.Error) {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	planRepository := s.newPlanRepository(session)

	plan, svcErr := s.get(session, planID)
	if svcErr != nil {
		return nil, svcErr
	}

	steps, svcErr := mutate(decodeSteps(plan.StepsJSON))
	if svcErr != nil {
		return nil, svcErr
	}

	stepsJSON := marshalSteps(steps)
	completion := computeCompletion(steps)
	err := planRepository.Update(planID, &model.UpdatePlanCondition{
		StepsJSON:  &stepsJSON,
		Completion: &completion,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("update plan steps: %w", err))
	}

	updated, svcErr := s.get(session, planID)
	if svcErr != nil {
		return nil, svcErr
	}
	return toResponse(updated), nil
}

func (s *Service) get(session interfaces.Session, id string) (*entity.Plan, *model.Error) {
	plan, err := s.newPlanRepository(session).Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("get plan: %w", err))
	}
	if plan == nil {
		return nil, model.NewError(model.ErrorNotFound, fmt.Errorf("plan %s not found", id))
	}
	return plan, nil
}

func (s *Service) newPlanRepository(session interfaces.Session) repository.PlanRepository {
	planRepository, err := s.repositoryFactory.NewPlanRepository(session)
	if err != nil {
		panic(fmt.Sprintf("failed to create plan repository: %s", err.Error()))
	}
	return planRepository
}

// computeCompletion is the single source of the completion percentage:
// round(100 * completed / total), zero when there are no steps.
func computeCompletion(steps []model.PlanStep) int {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, step := range steps {
		if step.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(steps))))
}

// normalizeSteps fills in ids and default priorities, rejecting steps with
// no text or an unknown priority.
func normalizeSteps(steps []model.PlanStep) ([]model.PlanStep, *model.Error) {
	normalized := make([]model.PlanStep, 0, len(steps))
	for _, step := range steps {
		step.Text = strings.TrimSpace(step.Text)
		if step.Text == "" {
			return nil, model.NewError(model.ErrorParams, fmt.Errorf("step text is required"))
		}
		if step.Priority != "" && !constant.StepPriority(step.Priority).IsValid() {
			return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown step priority %q", step.Priority))
		}
		if step.ID == "" {
			step.ID = uuid.NewString()
		}
		step.Priority = constant.StepPriority(step.Priority).OrDefault().String()
		normalized = append(normalized, step)
	}
	return normalized, nil
}

func toResponse(plan *entity.Plan) *model.PlanResponse {
	return &model.PlanResponse{
		ID:          plan.ID,
		UserID:      plan.UserID,
		Title:       plan.Title,
		Description: plan.Description,
		Goals:       tools.ParseTags(plan.GoalsJSON),
		Steps:       decodeSteps(plan.StepsJSON),
		Status:      plan.Status,
		Completion:  plan.Completion,
		CreatedAt:   projecttime.ToTimestamp(plan.CreatedAt),
		UpdatedAt:   projecttime.ToTimestamp(plan.UpdatedAt),
	}
}

func marshalSteps(steps []model.PlanStep) string {
	if steps == nil {
		steps = []model.PlanStep{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeSteps(raw string) []model.PlanStep {
	if raw == "" {
		return []model.PlanStep{}
	}
	var steps []model.PlanStep
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		log.Warnf("dropping unreadable steps column: %s", err.Error())
		return []model.PlanStep{}
	}
	return steps
}
