package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/llm"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/keyword"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/str"
	projecttime "github.com/OMEGACYBER/zoxaa-aicompanion/pkg/time"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/interfaces"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
)

// summaryJob queues one conversation for a background summary refresh.
type summaryJob struct {
	ConversationID string
}

// Service owns conversation threads. Messages only ever grow; every write
// path loads the stored list, appends, and writes the superset back. With an
// llm client attached the service also refreshes thread summaries in the
// background as conversations grow.
type Service struct {
	repositoryFactory factory.Factory
	llmClient         *llm.Client
	summaries         *tools.Processor
}

// NewService returns the shared conversation service. Summaries need the
// upstream client; when it cannot be built they are skipped, nothing else
// degrades.
func NewService(repositoryFactory factory.Factory) *Service {
	serviceOnce.Do(func() {
		llmClient, err := llm.GetInstance()
		if err != nil {
			log.Warnf("llm client unavailable, conversation summaries disabled: %s", err.Error())
			instance = NewServiceWithFactory(repositoryFactory)
			return
		}
		instance = NewServiceWithClient(repositoryFactory, llmClient)
	})
	return instance
}

// NewServiceWithFactory wires a service instance without a summarizer,
// bypassing the singleton.
func NewServiceWithFactory(repositoryFactory factory.Factory) *Service {
	return &Service{repositoryFactory: repositoryFactory}
}

// NewServiceWithClient wires a service instance around an explicit llm
// client, bypassing the singleton.
func NewServiceWithClient(repositoryFactory factory.Factory, llmClient *llm.Client) *Service {
	s := &Service{repositoryFactory: repositoryFactory, llmClient: llmClient}
	s.summaries = tools.NewProcessor("conversation_summary", tools.GetDefaultConfig(), s.refreshSummaries)
	s.summaries.Start()
	return s
}

// Create starts a conversation, deriving the title from the first user turn
// when the client did not name it and tagging emotions found in user text.
func (s *Service) Create(ctx context.Context, req *model.CreateConversationRequest) (*model.ConversationResponse, *model.Error) {
	if req == nil || req.UserID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId is required"))
	}

	now := projecttime.GetNowTimestamp()
	messages := make([]model.ConversationMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == "" || strings.TrimSpace(m.Content) == "" {
			return nil, model.NewError(model.ErrorParams, fmt.Errorf("message role and content are required"))
		}
		if m.Timestamp == 0 {
			m.Timestamp = now
		}
		messages = append(messages, m)
	}

	conversation := &entity.Conversation{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Title:        deriveTitle(req.Title, messages),
		MessagesJSON: marshalMessages(messages),
		EmotionsJSON: marshalEmotions(mergeEmotions(nil, messages...)),
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	if err := s.newConversationRepository(session).Insert(conversation); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("insert conversation: %w", err))
	}
	log.Infof("created conversation %s for user %s (%d messages)", conversation.ID, conversation.UserID, len(messages))
	return s.toResponse(conversation), nil
}

// Get returns one conversation with decoded messages and emotion tags.
func (s *Service) Get(ctx context.Context, id string) (*model.ConversationResponse, *model.Error) {
	if id == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("conversation id is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	conversation, svcErr := s.get(session, id)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.toResponse(conversation), nil
}

// List returns a user's conversations, most recently active first.
func (s *Service) List(ctx context.Context, condition *model.GetConversationsCondition) ([]*model.ConversationResponse, *model.Error) {
	if condition == nil || condition.UserID == nil || *condition.UserID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	conversations, err := s.newConversationRepository(session).List(condition)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("list conversations: %w", err))
	}

	responses := make([]*model.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		responses = append(responses, s.toResponse(c))
	}
	return responses, nil
}

// AppendMessage adds one turn to a conversation. The stored list is reloaded
// under the session so the written JSON is always a superset of what is on
// disk, and emotions picked up from user turns accumulate.
func (s *Service) AppendMessage(ctx context.Context, id string, req *model.AppendMessageRequest) (*model.ConversationResponse, *model.Error) {
	if id == "" || req == nil || req.Role == "" || strings.TrimSpace(req.Content) == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("conversation id, role and content are required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	conversationRepository := s.newConversationRepository(session)

	conversation, svcErr := s.get(session, id)
	if svcErr != nil {
		return nil, svcErr
	}

	message := model.ConversationMessage{
		Role:      req.Role,
		Content:   req.Content,
		Timestamp: projecttime.GetNowTimestamp(),
	}
	messages := append(decodeMessages(conversation.MessagesJSON), message)
	emotions := mergeEmotions(decodeEmotions(conversation.EmotionsJSON), message)

	messagesJSON := marshalMessages(messages)
	emotionsJSON := marshalEmotions(emotions)
	condition := &model.UpdateConversationCondition{
		MessagesJSON: &messagesJSON,
		EmotionsJSON: &emotionsJSON,
	}
	if conversation.Title == constant.DefaultConversationTitle && message.Role == constant.RoleUser {
		title := deriveTitle("", []model.ConversationMessage{message})
		condition.Title = &title
	}

	if err := conversationRepository.Update(id, condition); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("update conversation: %w", err))
	}

	if s.summaries != nil && len(messages)%constant.SummaryEveryMessages == 0 {
		s.summaries.Submit(summaryJob{ConversationID: id})
	}

	updated, svcErr := s.get(session, id)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.toResponse(updated), nil
}

// Delete removes a conversation thread.
func (s *Service) Delete(ctx context.Context, id string) *model.Error {
	if id == "" {
		return model.NewError(model.ErrorParams, fmt.Errorf("conversation id is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	conversationRepository := s.newConversationRepository(session)

	if _, svcErr := s.get(session, id); svcErr != nil {
		return svcErr
	}
	if err := conversationRepository.Delete(id); err != nil {
		return model.NewError(model.ErrorDB, fmt.Errorf("delete conversation: %w", err))
	}
	return nil
}

// Stop drains the background summary queue.
func (s *Service) Stop() {
	if s.summaries != nil {
		s.summaries.Stop()
	}
}

// refreshSummaries is the processor handler: it rewrites the summary of each
// queued conversation from its current thread. Failures are logged per item
// so one bad job never poisons the batch.
func (s *Service) refreshSummaries(batchData []interface{}) error {
	ctx := context.Background()
	for _, item := range batchData {
		job, ok := item.(summaryJob)
		if !ok {
			log.Errorf("unexpected summary payload type %T", item)
			continue
		}
		if err := s.refreshSummary(ctx, job.ConversationID); err != nil {
			log.Warnf("summary refresh for conversation %s failed: %s", job.ConversationID, err.Error())
		}
	}
	return nil
}

func (s *Service) refreshSummary(ctx context.Context, id string) error {
	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	conversation, svcErr := s.get(session, id)
	if svcErr != nil {
		return svcErr
	}

	var thread strings.Builder
	for _, m := range decodeMessages(conversation.MessagesJSON) {
		thread.WriteString(m.Role)
		thread.WriteString(": ")
		thread.WriteString(m.Content)
		thread.WriteString("\n")
	}

	response, err := s.llmClient.PostChatCompletionsNonStream(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: constant.SummarySystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(constant.SummaryUserPromptTemplate, thread.String())},
	})
	if err != nil {
		return err
	}
	if len(response.Choices) == 0 {
		return fmt.Errorf("upstream returned no choices")
	}
	summary := strings.TrimSpace(response.Choices[0].Message.Content)
	if summary == "" {
		return nil
	}

	if err := s.newConversationRepository(session).Update(id, &model.UpdateConversationCondition{Summary: &summary}); err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	log.Infof("refreshed summary for conversation %s", id)
	return nil
}

func (s *Service) get(session interfaces.Session, id string) (*entity.Conversation, *model.Error) {
	conversation, err := s.newConversationRepository(session).Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("get conversation: %w", err))
	}
	if conversation == nil {
		return nil, model.NewError(model.ErrorNotFound, fmt.Errorf("conversation %s not found", id))
	}
	return conversation, nil
}

func (s *Service) toResponse(conversation *entity.Conversation) *model.ConversationResponse {
	return &model.ConversationResponse{
		ID:        conversation.ID,
		UserID:    conversation.UserID,
		Title:     conversation.Title,
		Summary:   conversation.Summary,
		Messages:  decodeMessages(conversation.MessagesJSON),
		Emotions:  decodeEmotions(conversation.EmotionsJSON),
		CreatedAt: projecttime.ToTimestamp(conversation.CreatedAt),
		UpdatedAt: projecttime.ToTimestamp(conversation.UpdatedAt),
	}
}

func (s *Service) newConversationRepository(session interfaces.Session) repository.ConversationRepository {
	conversationRepository, err := s.repositoryFactory.NewConversationRepository(session)
	if err != nil {
		panic(fmt.Sprintf("failed to create conversation repository: %s", err.Error()))
	}
	return conversationRepository
}

// deriveTitle prefers the explicit title, then the first user turn, then the
// default.
func deriveTitle(explicit string, messages []model.ConversationMessage) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return str.Truncate(t, constant.ConversationTitleLimit)
	}
	for _, m := range messages {
		if m.Role == constant.RoleUser {
			if line := str.FirstNonEmptyLine(m.Content); line != "" {
				return str.Truncate(line, constant.ConversationTitleLimit)
			}
		}
	}
	return constant.DefaultConversationTitle
}

// mergeEmotions unions stored tags with those detected in new user turns,
// keeping first-seen order.
func mergeEmotions(existing []string, messages ...model.ConversationMessage) []string {
	seen := make(map[string]struct{}, len(existing))
	merged := make([]string, 0, len(existing))
	for _, tag := range existing {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		merged = append(merged, tag)
	}
	for _, m := range messages {
		if m.Role != constant.RoleUser {
			continue
		}
		for _, tag := range keyword.DetectEmotions(m.Content) {
			if _, ok := seen[tag.String()]; ok {
				continue
			}
			seen[tag.String()] = struct{}{}
			merged = append(merged, tag.String())
		}
	}
	return merged
}

func marshalMessages(messages []model.ConversationMessage) string {
	if messages == nil {
		messages = []model.ConversationMessage{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeMessages(raw string) []model.ConversationMessage {
	if raw == "" {
		return []model.ConversationMessage{}
	}
	var messages []model.ConversationMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		log.Warnf("dropping unreadable messages column: %s", err.Error())
		return []model.ConversationMessage{}
	}
	return messages
}

func marshalEmotions(emotions []string) string {
	return tools.MarshalTags(emotions)
}

func decodeEmotions(raw string) []string {
	return tools.ParseTags(raw)
}
