package memimplement

import (
	"context"
	"fmt"
	"sync"

	"github.com/OMEGACYBER/zoxaa-aicompanion/entity"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/factory"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/interfaces"
	"github.com/philippgille/chromem-go"
)

const vectorCollectionName = "memories"

var once sync.Once
var instance *Factory

// Factory keeps everything in process memory. Entities live in maps, memory
// embeddings additionally live in a chromem collection for similarity search.
// Useful for development and tests, data is gone on restart.
type Factory struct {
	mu            sync.RWMutex
	memories      map[string]*entity.Memory
	plans         map[string]*entity.Plan
	conversations map[string]*entity.Conversation
	vectors       *chromem.Collection
}

// NewFactory builds an isolated in-memory store.
func NewFactory() (*Factory, error) {
	collection, err := chromem.NewDB().CreateCollection(vectorCollectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector collection: %w", err)
	}

	return &Factory{
		memories:      make(map[string]*entity.Memory),
		plans:         make(map[string]*entity.Plan),
		conversations: make(map[string]*entity.Conversation),
		vectors:       collection,
	}, nil
}

// GetRepositoryFactoryInstance returns the shared in-memory factory.
func GetRepositoryFactoryInstance() factory.Factory {
	once.Do(func() {
		f, err := NewFactory()
		if err != nil {
			panic(err)
		}
		instance = f
	})
	return instance
}

// Session carries the request context. The in-memory store has no
// transactions, every call is applied immediately.
type Session struct {
	ctx context.Context
}

func (s *Session) Begin() error    { return nil }
func (s *Session) Close() error    { return nil }
func (s *Session) Commit() error   { return nil }
func (s *Session) Rollback() error { return nil }

func (f *Factory) NewSession(ctx context.Context) interfaces.Session {
	return &Session{ctx: ctx}
}

// NewMemoryRepository builds the memory repository over the shared maps.
func (f *Factory) NewMemoryRepository(session interfaces.Session) (repository.MemoryRepository, error) {
	if s, ok := session.(*Session); ok {
		return &MemoryRepository{factory: f, session: s}, nil
	}
	return nil, fmt.Errorf("session is not an in-memory session")
}

// NewPlanRepository builds the plan repository over the shared maps.
func (f *Factory) NewPlanRepository(session interfaces.Session) (repository.PlanRepository, error) {
	if s, ok := session.(*Session); ok {
		return &PlanRepository{factory: f, session: s}, nil
	}
	return nil, fmt.Errorf("session is not an in-memory session")
}

// NewConversationRepository builds the conversation repository over the shared maps.
func (f *Factory) NewConversationRepository(session interfaces.Session) (repository.ConversationRepository, error) {
	if s, ok := session.(*Session); ok {
		return &ConversationRepository{factory: f, session: s}, nil
	}
	return nil, fmt.Errorf("session is not an in-memory session")
}
