package repository

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

// MemoryRepository persists remembered facts about users.
type MemoryRepository interface {
	// Insert stores a new memory.
	Insert(memory *entity.Memory) error
	// Get fetches a single memory, nil when absent.
	Get(memoryID string) (*entity.Memory, error)
	// List returns memories matching the condition, newest first by default.
	List(condition *model.GetMemoriesCondition) ([]*entity.Memory, error)
	// Update patches the mutable fields, nil fields stay untouched.
	Update(memoryID string, condition *model.UpdateMemoryCondition) error
	// Delete removes a memory.
	Delete(memoryID string) error
	// Count returns how many memories a user has.
	Count(userID string) (int64, error)
	// VectorSearch returns the nearest memories by embedding similarity.
	// Memories without an embedding never match.
	VectorSearch(condition *model.VectorSearchCondition) ([]*model.MemorySearchResult, error)
}
