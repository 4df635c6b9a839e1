package model

// ChatMessage is one turn in the browser's conversation history.
// Field names follow the client payload, so JSON tags stay camelCase.
type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. Messages is validated by the
// service rather than a binding tag so a missing array yields the documented
// error message instead of a binding dump.
type ChatRequest struct {
	Messages       []ChatMessage         `json:"messages"`
	SystemPrompt   string                `json:"systemPrompt"`
	UserID         string                `json:"userId"`
	ConversationID string                `json:"conversationId"`
	Memory         *MemoryContextOptions `json:"memory,omitempty"`
}

// ChatResponse is the body of a successful POST /api/chat.
type ChatResponse struct {
	Response       string `json:"response"`
	Tokens         int    `json:"tokens"`
	Model          string `json:"model"`
	ConversationID string `json:"conversationId,omitempty"`
}

// MemoryContextOptions tunes how much remembered context the relay folds
// into the outgoing system prompt. Nil fields keep the configured defaults.
type MemoryContextOptions struct {
	EnableRetrieval *bool    `json:"enableRetrieval"` // semantic retrieval on the latest user turn
	MemoryLimit     *int     `json:"memoryLimit"`     // retrieved memory count
	Threshold       *float64 `json:"threshold"`       // minimum cosine similarity
}
