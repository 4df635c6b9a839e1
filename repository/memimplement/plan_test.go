package memimplement

import (
	"context"
	"testing"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanRepo(t *testing.T) repository.PlanRepository {
	factory, err := NewFactory()
	require.NoError(t, err)

	repo, err := factory.NewPlanRepository(factory.NewSession(context.Background()))
	require.NoError(t, err)
	return repo
}

func TestPlanLifecycle(t *testing.T) {
	repo := newPlanRepo(t)

	require.NoError(t, repo.Insert(&entity.Plan{
		ID:        "plan-1",
		UserID:    "user-1",
		Title:     "Learn guitar",
		StepsJSON: "[]",
		GoalsJSON: "[]",
		Status:    constant.PlanStatusActive.String(),
	}))

	got, err := repo.Get("plan-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Learn guitar", got.Title)
	assert.Equal(t, 0, got.Completion)

	completion := 50
	status := constant.PlanStatusCompleted.String()
	require.NoError(t, repo.Update("plan-1", &model.UpdatePlanCondition{
		Completion: &completion,
		Status:     &status,
	}))

	got, err = repo.Get("plan-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 50, got.Completion)
	assert.Equal(t, status, got.Status)

	require.NoError(t, repo.Delete("plan-1"))

	got, err = repo.Get("plan-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlanListFiltersByStatus(t *testing.T) {
	repo := newPlanRepo(t)

	active := constant.PlanStatusActive.String()
	completed := constant.PlanStatusCompleted.String()

	require.NoError(t, repo.Insert(&entity.Plan{ID: "plan-1", UserID: "user-1", Title: "a", Status: active}))
	require.NoError(t, repo.Insert(&entity.Plan{ID: "plan-2", UserID: "user-1", Title: "b", Status: completed}))
	require.NoError(t, repo.Insert(&entity.Plan{ID: "plan-3", UserID: "user-2", Title: "c", Status: active}))

	userID := "user-1"
	plans, err := repo.List(&model.GetPlansCondition{UserID: &userID, Status: &active})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "plan-1", plans[0].ID)
}
