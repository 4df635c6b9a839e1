package memimplement

import (
	"fmt"
	"sort"
	"time"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

type ConversationRepository struct {
	factory *Factory
	session *Session
}

func (r *ConversationRepository) Insert(conversation *entity.Conversation) error {
	if conversation == nil {
		return fmt.Errorf("conversation cannot be nil")
	}
	if conversation.ID == "" {
		return fmt.Errorf("conversation id is required")
	}
	if conversation.UserID == "" {
		return fmt.Errorf("user_id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	if _, exists := r.factory.conversations[conversation.ID]; exists {
		return fmt.Errorf("conversation already exists: %s", conversation.ID)
	}

	now := time.Now()
	clone := *conversation
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = now
	}
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = now
	}
	r.factory.conversations[clone.ID] = &clone

	return nil
}

func (r *ConversationRepository) Get(conversationID string) (*entity.Conversation, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	r.factory.mu.RLock()
	defer r.factory.mu.RUnlock()

	stored, ok := r.factory.conversations[conversationID]
	if !ok {
		return nil, nil
	}

	clone := *stored
	return &clone, nil
}

func (r *ConversationRepository) List(condition *model.GetConversationsCondition) ([]*entity.Conversation, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	r.factory.mu.RLock()
	results := make([]*entity.Conversation, 0, len(r.factory.conversations))
	for _, stored := range r.factory.conversations {
		if condition.UserID != nil && *condition.UserID != "" && stored.UserID != *condition.UserID {
			continue
		}
		clone := *stored
		results = append(results, &clone)
	}
	r.factory.mu.RUnlock()

	field, asc := orderSpec(condition.GetOrder(), entity.ConversationFieldUpdatedAt)
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if !asc {
			a, b = b, a
		}
		switch field {
		case entity.ConversationFieldCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	})

	start, end := pageBounds(condition.GetPager(), len(results))
	return results[start:end], nil
}

func (r *ConversationRepository) Update(conversationID string, condition *model.UpdateConversationCondition) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}
	if condition.Title == nil && condition.Summary == nil &&
		condition.MessagesJSON == nil && condition.EmotionsJSON == nil {
		return fmt.Errorf("at least one field must be updated")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	stored, ok := r.factory.conversations[conversationID]
	if !ok {
		return nil
	}

	if condition.Title != nil {
		stored.Title = *condition.Title
	}
	if condition.Summary != nil {
		stored.Summary = *condition.Summary
	}
	if condition.MessagesJSON != nil {
		stored.MessagesJSON = *condition.MessagesJSON
	}
	if condition.EmotionsJSON != nil {
		stored.EmotionsJSON = *condition.EmotionsJSON
	}
	stored.UpdatedAt = time.Now()

	return nil
}

func (r *ConversationRepository) Delete(conversationID string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id is required")
	}

	r.factory.mu.Lock()
	defer r.factory.mu.Unlock()

	delete(r.factory.conversations, conversationID)
	return nil
}
