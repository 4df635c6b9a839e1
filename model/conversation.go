package model

// ConversationMessage is one stored turn of a conversation.
type ConversationMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch millis, matches the client
}

// CreateConversationRequest is the body of POST /api/conversations.
type CreateConversationRequest struct {
	UserID   string                `json:"userId" binding:"required"`
	Title    string                `json:"title"`
	Messages []ConversationMessage `json:"messages"`
}

// AppendMessageRequest is the body of POST /api/conversations/:id/messages.
type AppendMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ConversationResponse is the API view of a conversation with decoded
// messages and emotion tags.
type ConversationResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"userId"`
	Title     string                `json:"title"`
	Summary   string                `json:"summary"`
	Messages  []ConversationMessage `json:"messages"`
	Emotions  []string              `json:"emotions"`
	CreatedAt int64                 `json:"createdAt"`
	UpdatedAt int64                 `json:"updatedAt"`
}

// GetConversationsCondition filters conversation list queries.
type GetConversationsCondition struct {
	UserID *string `json:"user_id"`
	*Pager
	*Order
}

func (g *GetConversationsCondition) GetPager() *Pager {
	return g.Pager
}

func (g *GetConversationsCondition) GetOrder() *Order {
	return g.Order
}

// UpdateConversationCondition carries the mutable conversation columns; nil
// means unchanged. MessagesJSON is only ever written by the append path.
type UpdateConversationCondition struct {
	Title        *string `json:"title"`
	Summary      *string `json:"summary"`
	MessagesJSON *string `json:"messages_json"`
	EmotionsJSON *string `json:"emotions_json"`
}
