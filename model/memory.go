package model

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
)

// CreateMemoryRequest is the body of POST /api/memories.
type CreateMemoryRequest struct {
	UserID     string   `json:"userId" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Context    string   `json:"context"`
	Importance string   `json:"importance"`
	Tags       []string `json:"tags"`
}

// SearchMemoriesRequest is the body of POST /api/memories/search. Threshold
// overrides the configured minimum similarity; it has no effect on the
// keyword fallback, which ranks by importance instead of score.
type SearchMemoriesRequest struct {
	UserID    string   `json:"userId" binding:"required"`
	Query     string   `json:"query" binding:"required"`
	Limit     int      `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

// MemorySearchResult pairs a memory with its retrieval score. Similarity is
// zero for keyword-fallback hits, which are ranked by importance instead.
type MemorySearchResult struct {
	Memory     *entity.Memory `json:"memory"`
	Similarity float64        `json:"similarity"`
}

// GetMemoriesCondition filters memory list queries.
type GetMemoriesCondition struct {
	UserID     *string              `json:"user_id"`
	Importance *constant.Importance `json:"importance"`
	*Pager
	*Order
}

func (g *GetMemoriesCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetMemoriesCondition) GetOrder() *Order {
	return g.Order
}

// UpdateMemoryCondition carries the mutable memory fields; nil means unchanged.
type UpdateMemoryCondition struct {
	Content    *string `json:"content"`
	Context    *string `json:"context"`
	Importance *string `json:"importance"`
	Tags       *string `json:"tags"`      // JSON array
	Embedding  *string `json:"embedding"` // pgvector literal
}

// VectorSearchCondition drives similarity retrieval in the repository.
type VectorSearchCondition struct {
	UserID      string   `json:"user_id"`
	QueryVector string   `json:"query_vector"` // pgvector literal
	Limit       int      `json:"limit"`
	Threshold   *float64 `json:"threshold"` // minimum similarity, optional
}
