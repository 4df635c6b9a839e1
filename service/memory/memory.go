package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/config"
	"github.com/OMEGACYBER/zoxaa-aicompanion/constant"
	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/clients/embedding"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/keyword"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/metrics"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/textchunk"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/tools"
	"github.com/OMEGACYBER/zoxaa-aicompanion/pkg/vector"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/interfaces"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	serviceOnce sync.Once
	instance    *Service
)

// extractionJob is one piece of user text queued for background fact mining.
type extractionJob struct {
	UserID string
	Text   string
}

// Service owns long-term memory: writes, similarity retrieval with a keyword
// fallback, and background extraction of facts from conversation text.
type Service struct {
	repositoryFactory factory.Factory
	embeddingClient   *embedding.Client
	splitter          textchunk.Splitter
	processor         *tools.Processor
}

// NewService returns the process-wide memory service. The embedding client is
// optional: when it cannot be built the service still works, it just stores
// memories without vectors and answers searches through the keyword path.
func NewService(repositoryFactory factory.Factory) (*Service, error) {
	serviceOnce.Do(func() {
		embeddingClient, err := embedding.GetInstance()
		if err != nil {
			log.Warnf("embedding client unavailable, memory search degrades to keyword matching: %s", err.Error())
			embeddingClient = nil
		}
		instance = NewServiceWithClient(repositoryFactory, embeddingClient)
	})
	return instance, nil
}

// NewServiceWithClient wires a service around an explicit embedding client,
// bypassing the singleton. A nil client disables vector retrieval.
func NewServiceWithClient(repositoryFactory factory.Factory, embeddingClient *embedding.Client) *Service {
	cfg := config.GetInstance()
	s := &Service{
		repositoryFactory: repositoryFactory,
		embeddingClient:   embeddingClient,
		splitter: textchunk.NewSplitter(textchunk.Config{
			MaxSize:  cfg.GetIntOrDefault(config.MemoryChunkMaxSize, config.DefaultChunkMaxSize),
			Overlap:  cfg.GetIntOrDefault(config.MemoryChunkOverlap, config.DefaultChunkOverlap),
			MinSize:  textchunk.DefaultConfig().MinSize,
			Strategy: textchunk.DefaultConfig().Strategy,
		}),
	}
	s.processor = tools.NewProcessor("memory_extraction", tools.GetDefaultConfig(), s.persistExtracted)
	s.processor.Start()
	return s
}

// Remember stores one memory. Embedding failures are logged and swallowed so
// a flaky upstream never blocks a write; the row lands with a nil vector.
func (s *Service) Remember(ctx context.Context, req *model.CreateMemoryRequest) (*entity.Memory, *model.Error) {
	if req == nil || req.UserID == "" || strings.TrimSpace(req.Content) == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId and content are required"))
	}
	if req.Importance != "" && !constant.Importance(req.Importance).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown importance %q", req.Importance))
	}

	content := strings.TrimSpace(req.Content)
	memory := &entity.Memory{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Content:    content,
		Context:    req.Context,
		Importance: constant.Importance(req.Importance).OrDefault().String(),
		Tags:       tools.MarshalTags(req.Tags),
		Embedding:  s.embedForStorage(ctx, content),
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	memoryRepository := s.newMemoryRepository(session)
	if err := memoryRepository.Insert(memory); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("insert memory: %w", err))
	}
	log.Infof("stored memory %s for user %s (importance=%s, embedded=%t)",
		memory.ID, memory.UserID, memory.Importance, memory.Embedding != nil)
	return memory, nil
}

// Search retrieves memories for a query, preferring vector similarity and
// falling back to keyword matching when embeddings are unavailable, the
// upstream fails, or similarity finds nothing above the threshold.
func (s *Service) Search(ctx context.Context, req *model.SearchMemoriesRequest) ([]*model.MemorySearchResult, *model.Error) {
	if req == nil || req.UserID == "" || strings.TrimSpace(req.Query) == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId and query are required"))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = config.GetInstance().GetIntOrDefault(config.MemoryRetrievalLimit, constant.DefaultMemoryLimit)
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	memoryRepository := s.newMemoryRepository(session)

	threshold := config.GetInstance().GetFloat64OrDefault(config.MemoryThreshold, config.DefaultMemoryThreshold)
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	if s.embeddingClient != nil {
		results, err := s.vectorSearch(ctx, memoryRepository, req.UserID, req.Query, limit, threshold)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			metrics.GetInstance().RecordMemorySearch(metrics.ModeVector)
			return results, nil
		}
	}

	results, err := s.keywordSearch(memoryRepository, req.UserID, req.Query, limit)
	if err != nil {
		return nil, err
	}
	metrics.GetInstance().RecordMemorySearch(metrics.ModeKeyword)
	return results, nil
}

// vectorSearch embeds the query and asks the repository for nearest rows.
// An embedding failure returns empty results so the caller falls back; a
// storage failure is a real error and surfaces.
func (s *Service) vectorSearch(ctx context.Context, memoryRepository repository.MemoryRepository, userID, query string, limit int, threshold float64) ([]*model.MemorySearchResult, *model.Error) {
	queryVector, err := s.embeddingClient.GetTextEmbedding(ctx, query)
	if err != nil {
		log.Warnf("query embedding failed, falling back to keyword search: %s", err.Error())
		return nil, nil
	}

	results, err := memoryRepository.VectorSearch(&model.VectorSearchCondition{
		UserID:      userID,
		QueryVector: vector.ToPgString(queryVector),
		Limit:       limit,
		Threshold:   &threshold,
	})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("vector search: %w", err))
	}
	return results, nil
}

// keywordSearch is the degraded retrieval path: the query is split into
// lowercase words, and a memory matches when its content or tags contain any
// word as a substring. Matches rank by importance, then recency.
func (s *Service) keywordSearch(memoryRepository repository.MemoryRepository, userID, query string, limit int) ([]*model.MemorySearchResult, *model.Error) {
	memories, err := memoryRepository.List(&model.GetMemoriesCondition{UserID: &userID})
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("list memories: %w", err))
	}

	words := strings.Fields(strings.ToLower(query))
	matched := make([]*entity.Memory, 0, len(memories))
	for _, m := range memories {
		content := strings.ToLower(m.Content)
		tags := strings.ToLower(m.Tags)
		for _, word := range words {
			if strings.Contains(content, word) || strings.Contains(tags, word) {
				matched = append(matched, m)
				break
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		ri := constant.Importance(matched[i].Importance).Rank()
		rj := constant.Importance(matched[j].Importance).Rank()
		if ri != rj {
			return ri > rj
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]*model.MemorySearchResult, 0, len(matched))
	for _, m := range matched {
		results = append(results, &model.MemorySearchResult{Memory: m})
	}
	return results, nil
}

// List returns memories matching the condition, newest first by default.
func (s *Service) List(ctx context.Context, condition *model.GetMemoriesCondition) ([]*entity.Memory, *model.Error) {
	if condition == nil || condition.UserID == nil || *condition.UserID == "" {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("userId is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	memories, err := s.newMemoryRepository(session).List(condition)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("list memories: %w", err))
	}
	return memories, nil
}

// Update mutates one memory. A content change re-embeds; importance must be
// one of the known levels when present.
func (s *Service) Update(ctx context.Context, id string, req *model.CreateMemoryRequest) (*entity.Memory, *model.Error) {
	if id == "" || req == nil {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("memory id is required"))
	}
	if req.Importance != "" && !constant.Importance(req.Importance).IsValid() {
		return nil, model.NewError(model.ErrorParams, fmt.Errorf("unknown importance %q", req.Importance))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	memoryRepository := s.newMemoryRepository(session)

	existing, err := memoryRepository.Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("get memory: %w", err))
	}
	if existing == nil {
		return nil, model.NewError(model.ErrorNotFound, fmt.Errorf("memory %s not found", id))
	}

	condition := &model.UpdateMemoryCondition{}
	if content := strings.TrimSpace(req.Content); content != "" && content != existing.Content {
		condition.Content = &content
		condition.Embedding = s.embedForStorage(ctx, content)
	}
	if req.Context != "" && req.Context != existing.Context {
		condition.Context = &req.Context
	}
	if req.Importance != "" {
		importance := constant.Importance(req.Importance).String()
		condition.Importance = &importance
	}
	if req.Tags != nil {
		tags := tools.MarshalTags(req.Tags)
		condition.Tags = &tags
	}
	if condition.Content == nil && condition.Context == nil && condition.Importance == nil && condition.Tags == nil {
		return existing, nil
	}

	if err := memoryRepository.Update(id, condition); err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("update memory: %w", err))
	}
	updated, err := memoryRepository.Get(id)
	if err != nil {
		return nil, model.NewError(model.ErrorDB, fmt.Errorf("get memory: %w", err))
	}
	return updated, nil
}

// Delete removes one memory by id.
func (s *Service) Delete(ctx context.Context, id string) *model.Error {
	if id == "" {
		return model.NewError(model.ErrorParams, fmt.Errorf("memory id is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")
	memoryRepository := s.newMemoryRepository(session)

	existing, err := memoryRepository.Get(id)
	if err != nil {
		return model.NewError(model.ErrorDB, fmt.Errorf("get memory: %w", err))
	}
	if existing == nil {
		return model.NewError(model.ErrorNotFound, fmt.Errorf("memory %s not found", id))
	}
	if err := memoryRepository.Delete(id); err != nil {
		return model.NewError(model.ErrorDB, fmt.Errorf("delete memory: %w", err))
	}
	return nil
}

// Count reports how many memories a user has stored.
func (s *Service) Count(ctx context.Context, userID string) (int64, *model.Error) {
	if userID == "" {
		return 0, model.NewError(model.ErrorParams, fmt.Errorf("userId is required"))
	}

	session := s.repositoryFactory.NewSession(ctx)
	defer tools.ErrorWithPrintContext(session.Close, "close session")

	count, err := s.newMemoryRepository(session).Count(userID)
	if err != nil {
		return 0, model.NewError(model.ErrorDB, fmt.Errorf("count memories: %w", err))
	}
	return count, nil
}

// BuildContext renders retrieved memories as a block for the system prompt.
// opts may be nil for the configured retrieval defaults. Retrieval problems
// degrade to an empty block, chat must not fail because recall did.
func (s *Service) BuildContext(ctx context.Context, userID, query string, opts *model.MemoryContextOptions) string {
	if userID == "" || strings.TrimSpace(query) == "" {
		return ""
	}

	req := &model.SearchMemoriesRequest{UserID: userID, Query: query}
	if opts != nil {
		if opts.EnableRetrieval != nil && !*opts.EnableRetrieval {
			return ""
		}
		if opts.MemoryLimit != nil && *opts.MemoryLimit > 0 {
			req.Limit = *opts.MemoryLimit
		}
		req.Threshold = opts.Threshold
	}

	results, err := s.Search(ctx, req)
	if err != nil {
		log.Warnf("memory recall failed, continuing without context: %s", err.String())
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(constant.MemoryContextHeader)
	for _, r := range results {
		b.WriteString("\n- ")
		b.WriteString(r.Memory.Content)
		b.WriteString(" (importance: ")
		b.WriteString(r.Memory.Importance)
		if tags := tools.ParseTags(r.Memory.Tags); len(tags) > 0 {
			b.WriteString(", tags: ")
			b.WriteString(strings.Join(tags, ", "))
		}
		b.WriteString(")")
	}
	return b.String()
}

// QueueExtraction schedules background fact mining over a piece of user text.
func (s *Service) QueueExtraction(userID, text string) {
	if userID == "" || strings.TrimSpace(text) == "" {
		return
	}
	s.processor.Submit(extractionJob{UserID: userID, Text: text})
}

// Stop drains the background extraction queue.
func (s *Service) Stop() {
	s.processor.Stop()
}

// persistExtracted is the processor handler: it mines each queued text for
// memory-worthy statements and stores them. Failures are logged per item so
// one bad job never poisons the batch.
func (s *Service) persistExtracted(batchData []interface{}) error {
	ctx := context.Background()
	for _, item := range batchData {
		job, ok := item.(extractionJob)
		if !ok {
			log.Errorf("unexpected extraction payload type %T", item)
			continue
		}
		for _, candidate := range keyword.ExtractMemories(job.Text) {
			_, err := s.Remember(ctx, &model.CreateMemoryRequest{
				UserID:     job.UserID,
				Content:    candidate.Content,
				Context:    "extracted from conversation",
				Importance: candidate.Importance.String(),
				Tags:       candidate.Tags,
			})
			if err != nil {
				log.Warnf("failed to persist extracted memory for user %s: %s", job.UserID, err.String())
			}
		}
	}
	return nil
}

// embedForStorage computes the stored vector for content, chunking oversized
// text down to its leading chunk first. Returns nil when embedding is off or
// the upstream call fails.
func (s *Service) embedForStorage(ctx context.Context, content string) *string {
	if s.embeddingClient == nil {
		return nil
	}
	embedText := content
	maxSize := config.GetInstance().GetIntOrDefault(config.MemoryChunkMaxSize, config.DefaultChunkMaxSize)
	if len(content) > maxSize {
		overlap := config.GetInstance().GetIntOrDefault(config.MemoryChunkOverlap, config.DefaultChunkOverlap)
		if chunks := s.splitter.Chunk(content, maxSize, overlap); len(chunks) > 0 {
			embedText = chunks[0].Text
		}
	}
	values, err := s.embeddingClient.GetTextEmbedding(ctx, embedText)
	if err != nil {
		log.Warnf("embedding failed, storing memory without vector: %s", err.Error())
		return nil
	}
	literal := vector.ToPgString(values)
	return &literal
}

func (s *Service) newMemoryRepository(session interfaces.Session) repository.MemoryRepository {
	memoryRepository, err := s.repositoryFactory.NewMemoryRepository(session)
	if err != nil {
		panic(fmt.Sprintf("failed to create memory repository: %s", err.Error()))
	}
	return memoryRepository
}
