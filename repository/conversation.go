package repository

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

// ConversationRepository persists conversation threads. The message JSON is
// append-only, writers replace it only with a superset of what was read.
type ConversationRepository interface {
	// Insert stores a new conversation.
	Insert(conversation *entity.Conversation) error
	// Get fetches a single conversation, nil when absent.
	Get(conversationID string) (*entity.Conversation, error)
	// List returns conversations matching the condition, newest first by default.
	List(condition *model.GetConversationsCondition) ([]*entity.Conversation, error)
	// Update patches the mutable columns, nil fields stay untouched.
	Update(conversationID string, condition *model.UpdateConversationCondition) error
	// Delete removes a conversation.
	Delete(conversationID string) error
}
