package plan

import (
	"context"
	"testing"

	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/memimplement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	repositoryFactory, err := memimplement.NewFactory()
	require.NoError(t, err)
	return NewServiceWithFactory(repositoryFactory)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func stepsPtr(s []model.PlanStep) *[]model.PlanStep { return &s }

func TestComputeCompletion(t *testing.T) {
	cases := []struct {
		completed int
		total     int
		want      int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{5, 6, 83},
	}
	for _, tc := range cases {
		steps := make([]model.PlanStep, 0, tc.total)
		for i := 0; i < tc.total; i++ {
			steps = append(steps, model.PlanStep{ID: "s", Text: "x", Completed: i < tc.completed})
		}
		assert.Equal(t, tc.want, computeCompletion(steps), "%d of %d", tc.completed, tc.total)
	}
}

func TestCreateComputesCompletion(t *testing.T) {
	svc := newTestService(t)

	resp, svcErr := svc.Create(context.Background(), &model.CreatePlanRequest{
		UserID: "user-1",
		Title:  "Learn the piano",
		Goals:  []string{"play one song"},
		Steps: []model.PlanStep{
			{Text: "buy a keyboard", Completed: true},
			{Text: "weekly lesson"},
			{Text: "practice daily"},
		},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "active", resp.Status)
	assert.Equal(t, 33, resp.Completion)
	assert.Equal(t, []string{"play one song"}, resp.Goals)
	require.Len(t, resp.Steps, 3)
	for _, step := range resp.Steps {
		assert.NotEmpty(t, step.ID)
		assert.Equal(t, "medium", step.Priority)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, svcErr := svc.Create(ctx, &model.CreatePlanRequest{UserID: "user-1"})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)

	_, svcErr = svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t", Steps: []model.PlanStep{{Text: "  "}},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)

	_, svcErr = svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t", Steps: []model.PlanStep{{Text: "x", Priority: "urgent"}},
	})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)
}

func TestUpdatePlanFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{UserID: "user-1", Title: "Old title"})
	require.Nil(t, svcErr)

	updated, svcErr := svc.Update(ctx, created.ID, &model.UpdatePlanRequest{
		Title:  strPtr("New title"),
		Status: strPtr("paused"),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "paused", updated.Status)

	_, svcErr = svc.Update(ctx, created.ID, &model.UpdatePlanRequest{Status: strPtr("bogus")})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)

	_, svcErr = svc.Update(ctx, "missing", &model.UpdatePlanRequest{Title: strPtr("x")})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorNotFound, svcErr.Code)
}

func TestUpdateReplacingStepsRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t",
		Steps: []model.PlanStep{{Text: "a"}},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 0, created.Completion)

	updated, svcErr := svc.Update(ctx, created.ID, &model.UpdatePlanRequest{
		Steps: stepsPtr([]model.PlanStep{
			{Text: "a", Completed: true},
			{Text: "b", Completed: true},
		}),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 100, updated.Completion)
}

func TestAddStepRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t",
		Steps: []model.PlanStep{{Text: "done already", Completed: true}},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 100, created.Completion)

	resp, svcErr := svc.AddStep(ctx, created.ID, &model.AddStepRequest{Text: "next thing", Priority: "high"})
	require.Nil(t, svcErr)
	assert.Equal(t, 50, resp.Completion)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, "high", resp.Steps[1].Priority)
	assert.False(t, resp.Steps[1].Completed)
}

func TestUpdateStepTogglesCompletion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t",
		Steps: []model.PlanStep{{Text: "a"}, {Text: "b"}},
	})
	require.Nil(t, svcErr)

	resp, svcErr := svc.UpdateStep(ctx, created.ID, created.Steps[0].ID, &model.UpdateStepRequest{
		Completed: boolPtr(true),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 50, resp.Completion)

	resp, svcErr = svc.UpdateStep(ctx, created.ID, created.Steps[1].ID, &model.UpdateStepRequest{
		Completed: boolPtr(true),
		Text:      strPtr("b, refined"),
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 100, resp.Completion)
	assert.Equal(t, "b, refined", resp.Steps[1].Text)

	_, svcErr = svc.UpdateStep(ctx, created.ID, "missing-step", &model.UpdateStepRequest{Completed: boolPtr(true)})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorNotFound, svcErr.Code)

	_, svcErr = svc.UpdateStep(ctx, created.ID, created.Steps[0].ID, &model.UpdateStepRequest{Priority: strPtr("asap")})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)
}

func TestDeleteStepRecomputes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{
		UserID: "user-1", Title: "t",
		Steps: []model.PlanStep{{Text: "a", Completed: true}, {Text: "b"}},
	})
	require.Nil(t, svcErr)
	assert.Equal(t, 50, created.Completion)

	resp, svcErr := svc.DeleteStep(ctx, created.ID, created.Steps[0].ID)
	require.Nil(t, svcErr)
	assert.Equal(t, 0, resp.Completion)
	require.Len(t, resp.Steps, 1)

	resp, svcErr = svc.DeleteStep(ctx, created.ID, resp.Steps[0].ID)
	require.Nil(t, svcErr)
	assert.Equal(t, 0, resp.Completion)
	assert.Empty(t, resp.Steps)

	_, svcErr = svc.DeleteStep(ctx, created.ID, "gone")
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorNotFound, svcErr.Code)
}

func TestListFiltersByStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, svcErr := svc.Create(ctx, &model.CreatePlanRequest{UserID: "user-1", Title: "one"})
	require.Nil(t, svcErr)
	_, svcErr = svc.Create(ctx, &model.CreatePlanRequest{UserID: "user-1", Title: "two"})
	require.Nil(t, svcErr)

	_, svcErr = svc.Update(ctx, first.ID, &model.UpdatePlanRequest{Status: strPtr("completed")})
	require.Nil(t, svcErr)

	responses, svcErr := svc.List(ctx, &model.GetPlansCondition{
		UserID: strPtr("user-1"),
		Status: strPtr("completed"),
	})
	require.Nil(t, svcErr)
	require.Len(t, responses, 1)
	assert.Equal(t, "one", responses[0].Title)

	_, svcErr = svc.List(ctx, &model.GetPlansCondition{UserID: strPtr("user-1"), Status: strPtr("nope")})
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorParams, svcErr.Code)
}

func TestDeletePlan(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, svcErr := svc.Create(ctx, &model.CreatePlanRequest{UserID: "user-1", Title: "t"})
	require.Nil(t, svcErr)

	require.Nil(t, svc.Delete(ctx, created.ID))

	_, svcErr = svc.Get(ctx, created.ID)
	require.NotNil(t, svcErr)
	assert.Equal(t, model.ErrorNotFound, svcErr.Code)
}
