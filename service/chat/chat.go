package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/llm"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/conversation"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/memory"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
	instanceErr error
)

// Service relays chat completions upstream. It folds remembered context into
// the system prompt on the way out and feeds finished exchanges back into
// conversations and memory extraction.
type Service struct {
	repositoryFactory   factory.Factory
	memoryService       *memory.Service
	conversationService *conversation.Service
	llmClient           *llm.Client
}

// NewService builds the shared chat service. A missing upstream credential
// surfaces here, before the server starts taking traffic.
func NewService(repositoryFactory factory.Factory) (*Service, error) {
	serviceOnce.Do(func() {
		memoryService, err := memory.NewService(repositoryFactory)
		if err != nil {
			instanceErr = fmt.Errorf("create memory service: %w", err)
			return
		}
		llmClient, err := llm.GetInstance()
		if err != nil {
			instanceErr = fmt.Errorf("create llm client: %w", err)
			return
		}
		instance = NewServiceWithClients(repositoryFactory, memoryService, conversation.NewService(repositoryFactory), llmClient)
	})
	return instance, instanceErr
}

// NewServiceWithClients wires a service instance directly, bypassing the
// singleton.
func NewServiceWithClients(repositoryFactory factory.Factory, memoryService *memory.Service,
	conversationService *conversation.Service, llmClient *llm.Client) *Service {
	return &Service{
		repositoryFactory:   repositoryFactory,
		memoryService:       memoryService,
		conversationService: conversationService,
		llmClient:           llmClient,
	}
}

// Complete relays one exchange and returns the reply with token usage. The
// request history is read, never mutated; only its trailing window goes
// upstream.
func (s *Service) Complete(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, *model.Error) {
	if svcErr := validate(req); svcErr != nil {
		return nil, svcErr
	}

	prompt := s.buildPrompt(ctx, req)
	response, err := s.llmClient.PostChatCompletionsNonStream(ctx, prompt)
	if err != nil {
		return nil, asModelError(err)
	}
	if len(response.Choices) == 0 {
		return nil, model.NewError(model.ErrorUpstream, fmt.Errorf("upstream returned no choices"))
	}

	reply := response.Choices[0].Message.Content
	s.recordExchange(ctx, req, reply)

	return &model.ChatResponse{
		Response:       reply,
		Tokens:         response.Usage.TotalTokens,
		Model:          response.Model,
		ConversationID: req.ConversationID,
	}, nil
}

// CompleteStream relays the exchange as SSE written straight to the gin
// response. Streamed replies are not captured, so only the user side feeds
// memory extraction.
func (s *Service) CompleteStream(ctx *context.Context, req *model.ChatRequest) *model.Error {
	if svcErr := validate(req); svcErr != nil {
		return svcErr
	}

	prompt := s.buildPrompt(*ctx, req)
	if err := s.llmClient.PostChatCompletions(ctx, prompt); err != nil {
		return asModelError(err)
	}

	if req.UserID != "" {
		s.memoryService.QueueExtraction(req.UserID, latestUserContent(req.Messages))
	}
	return nil
}

func validate(req *model.ChatRequest) *model.Error {
	if req == nil || len(req.Messages) == 0 {
		return model.NewErrorWithMessage(model.ErrorParams, "messages array is required")
	}
	return nil
}

// buildPrompt assembles [system, ...history, newest]. The system turn is the
// client's prompt or the default persona, plus whatever the memory service
// recalls about this user for the latest turn. Only the trailing window of
// prior turns goes upstream; the newest message always survives the clamp.
func (s *Service) buildPrompt(ctx context.Context, req *model.ChatRequest) []openai.ChatCompletionMessage {
	system := req.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = constant.DefaultSystemPrompt
	}
	if req.UserID != "" {
		if memoryContext := s.memoryService.BuildContext(ctx, req.UserID, latestUserContent(req.Messages), req.Memory); memoryContext != "" {
			system = system + "\n\n" + memoryContext
		}
	}

	newest := req.Messages[len(req.Messages)-1]
	history := req.Messages[:len(req.Messages)-1]
	if len(history) > constant.HistoryWindow {
		history = history[len(history)-constant.HistoryWindow:]
	}

	prompt := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	prompt = append(prompt, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		prompt = append(prompt, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	prompt = append(prompt, openai.ChatCompletionMessage{
		Role:    newest.Role,
		Content: newest.Content,
	})
	return prompt
}

// recordExchange appends the finished turn to its conversation and queues
// the user text for memory extraction. Neither failure reaches the caller;
// the reply is already in hand.
func (s *Service) recordExchange(ctx context.Context, req *model.ChatRequest, reply string) {
	if req.UserID == "" {
		return
	}

	userText := latestUserContent(req.Messages)
	s.memoryService.QueueExtraction(req.UserID, userText)

	if req.ConversationID == "" {
		return
	}
	for _, turn := range []model.AppendMessageRequest{
		{Role: constant.RoleUser, Content: userText},
		{Role: constant.RoleAssistant, Content: reply},
	} {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		if _, svcErr := s.conversationService.AppendMessage(ctx, req.ConversationID, &turn); svcErr != nil {
			log.Warnf("failed to append %s turn to conversation %s: %s", turn.Role, req.ConversationID, svcErr.String())
			return
		}
	}
}

// latestUserContent returns the content of the newest user turn, falling
// back to the last message when the client never marked one.
func latestUserContent(messages []model.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == constant.RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

func asModelError(err error) *model.Error {
	var modelErr *model.Error
	if errors.As(err, &modelErr) {
		return modelErr
	}
	return model.NewError(model.ErrorUpstream, err)
}
