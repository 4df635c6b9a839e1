package xormimplement

import (
	"fmt"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"xorm.io/builder"
)

type ConversationRepository struct {
	session *Session
}

func NewConversationRepository(session *Session) repository.ConversationRepository {
	return &ConversationRepository{session: session}
}

func buildConversationQueryConditions(condition *model.GetConversationsCondition) builder.Cond {
	var conds []builder.Cond

	if condition.UserID != nil && *condition.UserID != "" {
		conds = append(conds, builder.Eq{entity.ConversationFieldUserID: *condition.UserID})
	}

	if len(conds) == 0 {
		return nil
	}
	return builder.And(conds...)
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

	_, err := r.session.Table(entity.TableNameConversation).Insert(conversation)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	return nil
}

func (r *ConversationRepository) Get(conversationID string) (*entity.Conversation, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation id is required")
	}

	result := &entity.Conversation{}
	ok, err := r.session.Table(entity.TableNameConversation).
		Where(builder.Eq{entity.ConversationFieldID: conversationID}).
		Get(result)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	if !ok {
		return nil, nil
	}

	return result, nil
}

func (r *ConversationRepository) List(condition *model.GetConversationsCondition) ([]*entity.Conversation, error) {
	if condition == nil {
		return nil, fmt.Errorf("get condition cannot be nil")
	}

	cond := buildConversationQueryConditions(condition)

	session := r.session.Table(entity.TableNameConversation)
	if cond != nil {
		session = session.Where(cond)
	}

	pagerOrder(session, condition, WithDefaultOrderField(entity.ConversationFieldUpdatedAt))

	var results []*entity.Conversation
	if err := session.Find(&results); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return results, nil
}

func (r *ConversationRepository) Update(conversationID string, condition *model.UpdateConversationCondition) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id is required")
	}
	if condition == nil {
		return fmt.Errorf("update condition cannot be nil")
	}

	updateData := make(map[string]interface{})
	if condition.Title != nil {
		updateData[entity.ConversationFieldTitle] = *condition.Title
	}
	if condition.Summary != nil {
		updateData[entity.ConversationFieldSummary] = *condition.Summary
	}
	if condition.MessagesJSON != nil {
		updateData[entity.ConversationFieldMessagesJSON] = *condition.MessagesJSON
	}
	if condition.EmotionsJSON != nil {
		updateData[entity.ConversationFieldEmotionsJSON] = *condition.EmotionsJSON
	}

	if len(updateData) == 0 {
		return fmt.Errorf("at least one field must be updated")
	}

	_, err := r.session.Table(entity.TableNameConversation).
		Where(builder.Eq{entity.ConversationFieldID: conversationID}).
		Update(updateData)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	return nil
}

func (r *ConversationRepository) Delete(conversationID string) error {
	if conversationID == "" {
		return fmt.Errorf("conversation id is required")
	}

	_, err := r.session.Table(entity.TableNameConversation).
		Where(builder.Eq{entity.ConversationFieldID: conversationID}).
		Delete(&entity.Conversation{})
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	return nil
}
