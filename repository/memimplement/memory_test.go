package memimplement

import (
	"context"
	"testing"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/vector"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryRepo(t *testing.T) repository.MemoryRepository {
	factory, err := NewFactory()
	require.NoError(t, err)

	repo, err := factory.NewMemoryRepository(factory.NewSession(context.Background()))
	require.NoError(t, err)
	return repo
}

func embeddingLiteral(values ...float64) *string {
	s := vector.ToPgString(values)
	return &s
}

func insertMemory(t *testing.T, repo repository.MemoryRepository, id, userID, content string, embedding *string) {
	require.NoError(t, repo.Insert(&entity.Memory{
		ID:         id,
		UserID:     userID,
		Content:    content,
		Importance: constant.ImportanceMedium.String(),
		Tags:       "[]",
		Embedding:  embedding,
	}))
}

func TestMemoryInsertAndGet(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-1", "user-1", "likes green tea", embeddingLiteral(1, 0, 0))

	got, err := repo.Get("mem-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "likes green tea", got.Content)
	assert.Equal(t, "user-1", got.UserID)
	assert.False(t, got.CreatedAt.IsZero())

	missing, err := repo.Get("mem-404")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryInsertRejectsDuplicateID(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-1", "user-1", "first", nil)

	err := repo.Insert(&entity.Memory{ID: "mem-1", UserID: "user-1", Content: "second"})
	assert.Error(t, err)
}

func TestMemoryListFiltersAndPages(t *testing.T) {
	repo := newMemoryRepo(t)

	base := time.Now()
	for i, id := range []string{"mem-1", "mem-2", "mem-3"} {
		require.NoError(t, repo.Insert(&entity.Memory{
			ID:         id,
			UserID:     "user-1",
			Content:    "memory " + id,
			Importance: constant.ImportanceMedium.String(),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
	insertMemory(t, repo, "mem-other", "user-2", "someone else", nil)

	userID := "user-1"
	all, err := repo.List(&model.GetMemoriesCondition{UserID: &userID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// newest first by default
	assert.Equal(t, "mem-3", all[0].ID)
	assert.Equal(t, "mem-1", all[2].ID)

	page, err := repo.List(&model.GetMemoriesCondition{
		UserID: &userID,
		Pager:  &model.Pager{Limit: 2, Offset: 1},
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "mem-2", page[0].ID)
	assert.Equal(t, "mem-1", page[1].ID)
}

func TestMemoryUpdate(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-1", "user-1", "likes tea", nil)

	content := "likes oolong tea"
	importance := constant.ImportanceHigh.String()
	require.NoError(t, repo.Update("mem-1", &model.UpdateMemoryCondition{
		Content:    &content,
		Importance: &importance,
	}))

	got, err := repo.Get("mem-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, content, got.Content)
	assert.Equal(t, importance, got.Importance)

	err = repo.Update("mem-1", &model.UpdateMemoryCondition{})
	assert.Error(t, err)
}

func TestMemoryDeleteRemovesFromSearch(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-1", "user-1", "likes tea", embeddingLiteral(1, 0, 0))
	require.NoError(t, repo.Delete("mem-1"))

	got, err := repo.Get("mem-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestVectorSearchRanksBySimilarity(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-exact", "user-1", "green tea every morning", embeddingLiteral(1, 0, 0))
	insertMemory(t, repo, "mem-close", "user-1", "likes herbal tea", embeddingLiteral(0.9, 0.1, 0))
	insertMemory(t, repo, "mem-far", "user-1", "plays chess", embeddingLiteral(0, 1, 0))

	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       3,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "mem-exact", results[0].Memory.ID)
	assert.Equal(t, "mem-close", results[1].Memory.ID)
	assert.Equal(t, "mem-far", results[2].Memory.ID)
	assert.InDelta(t, 1.0, results[0].Similarity, 0.001)
	assert.Greater(t, results[1].Similarity, results[2].Similarity)
}

func TestVectorSearchScopedToUser(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-mine", "user-1", "mine", embeddingLiteral(1, 0, 0))
	insertMemory(t, repo, "mem-theirs", "user-2", "theirs", embeddingLiteral(1, 0, 0))

	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mem-mine", results[0].Memory.ID)
}

func TestVectorSearchAppliesThreshold(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-exact", "user-1", "matching", embeddingLiteral(1, 0, 0))
	insertMemory(t, repo, "mem-far", "user-1", "unrelated", embeddingLiteral(0, 1, 0))

	threshold := 0.5
	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       5,
		Threshold:   &threshold,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mem-exact", results[0].Memory.ID)
}

func TestVectorSearchSkipsRowsWithoutEmbedding(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-plain", "user-1", "no vector", nil)
	insertMemory(t, repo, "mem-indexed", "user-1", "has vector", embeddingLiteral(1, 0, 0))

	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "mem-indexed", results[0].Memory.ID)
}

func TestVectorSearchEmptyStore(t *testing.T) {
	repo := newMemoryRepo(t)

	results, err := repo.VectorSearch(&model.VectorSearchCondition{
		UserID:      "user-1",
		QueryVector: *embeddingLiteral(1, 0, 0),
		Limit:       5,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryCount(t *testing.T) {
	repo := newMemoryRepo(t)

	insertMemory(t, repo, "mem-1", "user-1", "a", nil)
	insertMemory(t, repo, "mem-2", "user-1", "b", nil)
	insertMemory(t, repo, "mem-3", "user-2", "c", nil)

	total, err := repo.Count("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
