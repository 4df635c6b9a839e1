package memimplement

import (
	"fmt"
	"sort"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/vector"
	"github.com/philippgille/chromem-go"
)

const metadataUserID = "user_id"

type MemoryRepository struct {
	factory *Factory
	session *Session
}

func (r *MemoryRepository) Insert(memory *entity.Memory) error {
	if memory == nil {
		return fmt.Errorf("memory cannot be nil")
	}
	if memory.ID == "" {
		return fmt.Errorf("memory id is required")
	}
	if memory.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	if _, exists := r.factory.memories[memory.ID]; exists {
		return fmt.Errorf("memory already exists: %s", memory.ID)
	}

	now := time.Now()
	clone := *memory
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = now
	}
	r.factory.memories[clone.ID] = &clone

	if err := r.indexEmbedding(&clone); err != nil {
		delete(r.factory.memories, clone.ID)
		return err
	}

	return nil
}

// indexEmbedding mirrors the row into the vector collection. Memories
// without an embedding are stored but stay invisible to similarity search.
func (r *MemoryRepository) indexEmbedding(memory *entity.Memory) error {
	if memory.Embedding == nil || *memory.Embedding == "" {
		return nil
	}

	vec, err := vector.ParsePgString(*memory.Embedding)
	if err != nil {
		return fmt.Errorf("failed to parse embedding: %w", err)
	}

	err = r.factory.vectors.AddDocument(r.session.ctx, chromem.Document{
		ID:        memory.ID,
		Metadata:  map[string]string{metadataUserID: memory.UserID},
		Embedding: vector.ToFloat32(vec),
		Content:   memory.Content,
	})
	if err != nil {
		return fmt.Errorf("failed to index embedding: %w", err)
	}

	return nil
}

func (r *MemoryRepository) Get(memoryID string) (*entity.Memory, error) {
	if memoryID == "" {
		return nil, fmt.Errorf("memory id is required")
	}

	r.factory.mu.RLock()
	defer r.factory.mu.RUnlock()

	stored, ok := r.factory.memories[memoryID]
	if !ok {
		return nil, nil
	}

	clone := *stored
	return &clone, nil
}

func (r *MemoryRepository) List(condition *model.GetMemoriesCondition) ([]*entity.Memory, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	r.factory.mu.RLock()
	results := make([]*entity.Memory, 0, len(r.factory.memories))
	for _, stored := range r.factory.memories {
		if condition.UserID != nil && *condition.UserID != "" && stored.UserID != *condition.UserID {
			continue
		}
		if condition.Importance != nil && *condition.Importance != "" && stored.Importance != condition.Importance.String() {
			continue
		}
		clone := *stored
		results = append(results, &clone)
	}
	r.factory.mu.RUnlock()

	field, asc := orderSpec(condition.GetOrder(), entity.MemoryFieldCreatedAt)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !asc {
			a, b = b, a
		}
		switch field {
		case entity.MemoryFieldUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		case entity.MemoryFieldImportance:
			return constant.Importance(a.Importance).Rank() < constant.Importance(b.Importance).Rank()
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})

	start, end := pageBounds(condition.GetPager(), len(results))
	return results[start:end], nil
}

func (r *MemoryRepository) Update(memoryID string, condition *model.UpdateMemoryCondition) error {
	if memoryID == "" {
		return fmt.Errorf("memory id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}
	if condition.Content == nil && condition.Context == nil && condition.Importance == nil &&
		condition.Tags == nil && condition.Embedding == nil {
		return fmt.Errorf("at least one field must be updated")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	stored, ok := r.factory.memories[memoryID]
	if !ok {
		return nil
	}

	if condition.Content != nil {
		stored.Content = *condition.Content
	}
	if condition.Context != nil {
		stored.Context = *condition.Context
	}
	if condition.Importance != nil {
		stored.Importance = *condition.Importance
	}
	if condition.Tags != nil {
		stored.Tags = *condition.Tags
	}
	stored.UpdatedAt = time.Now()

	if condition.Embedding != nil {
		stored.Embedding = condition.Embedding
		if err := r.factory.vectors.Delete(r.session.ctx, nil, nil, memoryID); err != nil {
			return fmt.Errorf("failed to reindex embedding: %w", err)
		}
		if err := r.indexEmbedding(stored); err != nil {
			return err
		}
	}

	return nil
}

func (r *MemoryRepository) Delete(memoryID string) error {
	if memoryID == "" {
		return fmt.Errorf("memory id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	stored, ok := r.factory.memories[memoryID]
	if !ok {
		return nil
	}
	delete(r.factory.memories, memoryID)

	if stored.Embedding != nil && *stored.Embedding != "" {
		if err := r.factory.vectors.Delete(r.session.ctx, nil, nil, memoryID); err != nil {
			return fmt.Errorf("failed to remove embedding: %w", err)
		}
	}

	return nil
}

func (r *MemoryRepository) Count(userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("user_id is required")
	}

	r.factory.mu.RLock()
	defer r.factory.mu.RUnlock()

	var total int64
	for _, stored := range r.factory.memories {
		if stored.UserID == userID {
			total++
		}
	}
	return total, nil
}

// VectorSearch queries the chromem collection scoped to one user. Scores are
// cosine similarities, the same scale the sql backend produces.
func (r *MemoryRepository) VectorSearch(condition *model.VectorSearchCondition) ([]*model.MemorySearchResult, error) {
	if condition == nil {
		return nil, fmt.Errorf("vector search condition cannot be nil")
	}
	if condition.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if condition.QueryVector == "" {
		return nil, fmt.Errorf("query_vector is required")
	}
	if condition.Limit <= 0 {
		condition.Limit = constant.DefaultMemoryLimit
	}

	queryVec, err := vector.ParsePgString(condition.QueryVector)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query vector: %w", err)
	}

	// chromem rejects nResults above the collection size
	limit := condition.Limit
	count := r.factory.vectors.Count()
	if count == 0 {
		return []*model.MemorySearchResult{}, nil
	}
	if limit > count {
		limit = count
	}

	hits, err := r.factory.vectors.QueryEmbedding(
		r.session.ctx,
		vector.ToFloat32(queryVec),
		limit,
		map[string]string{metadataUserID: condition.UserID},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to vector search memories: %w", err)
	}

	r.factory.mu.RLock()
	defer r.factory.mu.RUnlock()

	results := make([]*model.MemorySearchResult, 0, len(hits))
	for _, hit := range hits {
		similarity := float64(hit.Similarity)
		if condition.Threshold != nil && similarity < *condition.Threshold {
			continue
		}
		stored, ok := r.factory.memories[hit.ID]
		if !ok {
			continue
		}
		clone := *stored
		results = append(results, &model.MemorySearchResult{
			Memory:     &clone,
			Similarity: similarity,
		})
	}

	return results, nil
}
