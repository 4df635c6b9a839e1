package memimplement

import (
	"context"
	"testing"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversationRepo(t *testing.T) repository.ConversationRepository {
	factory, err := NewFactory()
	require.NoError(t, err)

	repo, err := factory.NewConversationRepository(factory.NewSession(context.Background()))
	require.NoError(t, err)
	return repo
}

func TestConversationLifecycle(t *testing.T) {
	repo := newConversationRepo(t)

	require.NoError(t, repo.Insert(&entity.Conversation{
		ID:           "conv-1",
		UserID:       "user-1",
		Title:        "Morning check-in",
		MessagesJSON: "[]",
		EmotionsJSON: "[]",
	}))

	got, err := repo.Get("conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Morning check-in", got.Title)

	messages := `[{"role":"user","content":"hi","timestamp":1700000000000}]`
	require.NoError(t, repo.Update("conv-1", &model.UpdateConversationCondition{
		MessagesJSON: &messages,
	}))

	got, err = repo.Get("conv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, messages, got.MessagesJSON)

	require.NoError(t, repo.Delete("conv-1"))

	got, err = repo.Get("conv-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConversationListScopedToUser(t *testing.T) {
	repo := newConversationRepo(t)

	require.NoError(t, repo.Insert(&entity.Conversation{ID: "conv-1", UserID: "user-1", Title: "a"}))
	require.NoError(t, repo.Insert(&entity.Conversation{ID: "conv-2", UserID: "user-2", Title: "b"}))

	userID := "user-1"
	conversations, err := repo.List(&model.GetConversationsCondition{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "conv-1", conversations[0].ID)
}
