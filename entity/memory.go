package entity

import "time"

const (
	TableNameMemory = "memories"

	MemoryFieldID         = "id"
	MemoryFieldUserID     = "user_id"
	MemoryFieldContent    = "content"
	MemoryFieldContext    = "context"
	MemoryFieldImportance = "importance"
	MemoryFieldTags       = "tags"
	MemoryFieldEmbedding  = "embedding"
	MemoryFieldCreatedAt  = "created_at"
	MemoryFieldUpdatedAt  = "updated_at"
)

// Memory is one remembered fact about a user. Embedding is nil when no
// vector could be computed, those rows are invisible to similarity search.
type Memory struct {
	ID         string    `xorm:"pk varchar(64) 'id'" json:"id"`
	UserID     string    `xorm:"varchar(64) index 'user_id'" json:"user_id"`
	Content    string    `xorm:"text 'content'" json:"content"`
	Context    string    `xorm:"text 'context'" json:"context"`
	Importance string    `xorm:"varchar(16) 'importance'" json:"importance"`
	Tags       string    `xorm:"text 'tags'" json:"tags"` // JSON array of strings
	Embedding  *string   `xorm:"'embedding'" json:"-"`    // pgvector column, string literal form
	CreatedAt  time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt  time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (e *Memory) TableName() string {
	return TableNameMemory
}
