package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/llm"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/memimplement"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/conversation"
	"github.com/OMEGACYBER/zoxaa-aicompanion/service/memory"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeCompletions captures every upstream request and answers with a canned
// reply, or with an OpenAI-shaped error when status is set.
type fakeCompletions struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	reply    string
	status   int
}

func newFakeCompletions() *fakeCompletions {
	f := &fakeCompletions{reply: "Hello! How was your day?"}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.requests = append(f.requests, req)
		status := f.status
		reply := f.reply
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"denied","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": reply},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 32, "total_tokens": 42},
		})
	}))
	return f
}

func (f *fakeCompletions) lastRequest() openai.ChatCompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type ChatServiceTest struct {
	suite.Suite
	upstream        *fakeCompletions
	memoryService   *memory.Service
	conversationSvc *conversation.Service
	svc             *Service
}

func (s *ChatServiceTest) SetupTest() {
	s.upstream = newFakeCompletions()

	repositoryFactory, err := memimplement.NewFactory()
	require.NoError(s.T(), err)

	s.memoryService = memory.NewServiceWithClient(repositoryFactory, nil)
	s.conversationSvc = conversation.NewServiceWithFactory(repositoryFactory)
	s.svc = NewServiceWithClients(repositoryFactory, s.memoryService, s.conversationSvc,
		llm.NewClient(s.upstream.server.URL, "test-api-key", "gpt-4o-mini"))
}

func (s *ChatServiceTest) TearDownTest() {
	s.memoryService.Stop()
	s.upstream.server.Close()
}

func (s *ChatServiceTest) TestCompleteReturnsReply() {
	resp, svcErr := s.svc.Complete(context.Background(), &model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.Nil(s.T(), svcErr)
	require.Equal(s.T(), "Hello! How was your day?", resp.Response)
	require.Equal(s.T(), 42, resp.Tokens)
	require.Equal(s.T(), "gpt-4o-mini", resp.Model)
	require.Empty(s.T(), resp.ConversationID)

	sent := s.upstream.lastRequest()
	require.Len(s.T(), sent.Messages, 2)
	require.Equal(s.T(), openai.ChatMessageRoleSystem, sent.Messages[0].Role)
	require.Equal(s.T(), constant.DefaultSystemPrompt, sent.Messages[0].Content)
	require.Equal(s.T(), "hi", sent.Messages[1].Content)
}

func (s *ChatServiceTest) TestCompleteSendsFixedSampling() {
	_, svcErr := s.svc.Complete(context.Background(), &model.ChatRequest{
		Messages: []model.ChatMessage{{Role: "user", Content: "hi"}},
	})
	require.Nil(s.T(), svcErr)

	sent := s.upstream.lastRequest()
	require.InDelta(s.T(), 0.8, sent.Temperature, 0.001)
	require.Equal(s.T(), 500, sent.MaxTokens)
	require.InDelta(s.T(), 0.6, sent.PresencePenalty, 0.001)
	require.InDelta(s.T(), 0.5, sent.FrequencyPenalty, 0.001)
}

func (s *ChatServiceTest) TestCompleteRequiresMessages() {
	_, svcErr := s.svc.Complete(context.Background(), nil)
	require.NotNil(s.T(), svcErr)
	require.Equal(s.T(), model.ErrorParams, svcErr.Code)
	require.Equal(s.T(), "messages array is required", svcErr.Message)

	_, svcErr = s.svc.Complete(context.Background(), &model.ChatRequest{})
	require.NotNil(s.T(), svcErr)
	require.Equal(s.T(), model.ErrorParams, svcErr.Code)
}

func (s *ChatServiceTest) TestCompleteClampsHistoryWithoutMutatingInput() {
	messages := make([]model.ChatMessage, 0, 15)
	for i := 0; i < 15; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, model.ChatMessage{Role: role, Content: strings.Repeat("x", i+1)})
	}
	req := &model.ChatRequest{Messages: messages}

	_, svcErr := s.svc.Complete(context.Background(), req)
	require.Nil(s.T(), svcErr)

	require.Len(s.T(), req.Messages, 15)
	require.Equal(s.T(), "x", req.Messages[0].Content)

	sent := s.upstream.lastRequest()
	require.Len(s.T(), sent.Messages, 1+constant.HistoryWindow+1)
	require.Equal(s.T(), messages[len(messages)-1].Content, sent.Messages[len(sent.Messages)-1].Content)
	require.Equal(s.T(), messages[len(messages)-2].Content, sent.Messages[len(sent.Messages)-2].Content)
}

func (s *ChatServiceTest) TestCompleteUsesSystemPromptOverride() {
	_, svcErr := s.svc.Complete(context.Background(), &model.ChatRequest{
		Messages:     []model.ChatMessage{{Role: "user", Content: "ahoy"}},
		SystemPrompt: "You are a pirate.",
	})
	require.Nil(s.T(), svcErr)

	sent := s.upstream.lastRequest()
	require.Equal(s.T(), "You are a pirate.", sent.Messages[0].Content)
}

func (s *ChatServiceTest) TestCompleteFoldsMemoriesIntoSystemPrompt() {
	ctx := context.Background()
	_, svcErr := s.memoryService.Remember(ctx, &model.CreateMemoryRequest{
		UserID: "user-1", Content: "allergic to peanuts", Importance: "high",
	})
	require.Nil(s.T(), svcErr)

	_, svcErr = s.svc.Complete(ctx, &model.ChatRequest{
		UserID:   "user-1",
		Messages: []model.ChatMessage{{Role: "user", Content: "any peanuts snack ideas?"}},
	})
	require.Nil(s.T(), svcErr)

	system := s.upstream.lastRequest().Messages[0].Content
	require.Contains(s.T(), system, constant.DefaultSystemPrompt)
	require.Contains(s.T(), system, constant.MemoryContextHeader)
	require.Contains(s.T(), system, "allergic to peanuts")
}

func (s *ChatServiceTest) TestCompleteSkipsRecallWhenDisabled() {
	ctx := context.Background()
	_, svcErr := s.memoryService.Remember(ctx, &model.CreateMemoryRequest{
		UserID: "user-1", Content: "allergic to peanuts", Importance: "high",
	})
	require.Nil(s.T(), svcErr)

	disabled := false
	_, svcErr = s.svc.Complete(ctx, &model.ChatRequest{
		UserID:   "user-1",
		Messages: []model.ChatMessage{{Role: "user", Content: "any peanuts snack ideas?"}},
		Memory:   &model.MemoryContextOptions{EnableRetrieval: &disabled},
	})
	require.Nil(s.T(), svcErr)

	system := s.upstream.lastRequest().Messages[0].Content
	require.NotContains(s.T(), system, constant.MemoryContextHeader)
}

func (s *ChatServiceTest) TestCompleteAppendsToConversation() {
	ctx := context.Background()
	created, svcErr := s.conversationSvc.Create(ctx, &model.CreateConversationRequest{UserID: "user-1"})
	require.Nil(s.T(), svcErr)

	resp, svcErr := s.svc.Complete(ctx, &model.ChatRequest{
		UserID:         "user-1",
		ConversationID: created.ID,
		Messages:       []model.ChatMessage{{Role: "user", Content: "tell me a joke"}},
	})
	require.Nil(s.T(), svcErr)
	require.Equal(s.T(), created.ID, resp.ConversationID)

	thread, svcErr := s.conversationSvc.Get(ctx, created.ID)
	require.Nil(s.T(), svcErr)
	require.Len(s.T(), thread.Messages, 2)
	require.Equal(s.T(), "user", thread.Messages[0].Role)
	require.Equal(s.T(), "tell me a joke", thread.Messages[0].Content)
	require.Equal(s.T(), "assistant", thread.Messages[1].Role)
	require.Equal(s.T(), "Hello! How was your day?", thread.Messages[1].Content)
}

func (s *ChatServiceTest) TestCompleteMapsUpstreamErrors() {
	cases := []struct {
		status int
		code   int
	}{
		{http.StatusUnauthorized, model.ErrorUpstreamAuth},
		{http.StatusTooManyRequests, model.ErrorUpstreamRateLimit},
		{http.StatusInternalServerError, model.ErrorUpstream},
	}
	for _, tc := range cases {
		s.upstream.mu.Lock()
		s.upstream.status = tc.status
		s.upstream.mu.Unlock()

		_, svcErr := s.svc.Complete(context.Background(), &model.ChatRequest{
			Messages: []model.ChatMessage{{Role: "user", Content: "hi"}},
		})
		require.NotNil(s.T(), svcErr)
		require.Equal(s.T(), tc.code, svcErr.Code, "status %d", tc.status)
	}
}

func TestChatService(t *testing.T) {
	suite.Run(t, new(ChatServiceTest))
}
