package entity

import "time"

const (
	TableNameConversation = "conversations"

	ConversationFieldID           = "id"
	ConversationFieldUserID       = "user_id"
	ConversationFieldTitle        = "title"
	ConversationFieldSummary      = "summary"
	ConversationFieldMessagesJSON = "messages_json"
	ConversationFieldEmotionsJSON = "emotions_json"
	ConversationFieldCreatedAt    = "created_at"
	ConversationFieldUpdatedAt    = "updated_at"
)

// Conversation is one exchange thread. Messages are append-only; the JSON
// column always grows, it is never rewritten from client input.
type Conversation struct {
	ID           string    `xorm:"pk varchar(64) 'id'" json:"id"`
	UserID       string    `xorm:"varchar(64) index 'user_id'" json:"user_id"`
	Title        string    `xorm:"varchar(256) 'title'" json:"title"`
	Summary      string    `xorm:"text 'summary'" json:"summary"`
	MessagesJSON string    `xorm:"text 'messages_json'" json:"messages_json"`
	EmotionsJSON string    `xorm:"text 'emotions_json'" json:"emotions_json"`
	CreatedAt    time.Time `xorm:"created 'created_at'" json:"created_at"`
	UpdatedAt    time.Time `xorm:"updated 'updated_at'" json:"updated_at"`
}

func (e *Conversation) TableName() string {
	return TableNameConversation
}
