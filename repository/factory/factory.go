package factory

import (
	"context"

	"github.com/OMEGACYBER/zoxaa-aicompanion/repository"
	"github.com/OMEGACYBER/zoxaa-aicompanion/repository/interfaces"
)

// Factory builds sessions and repositories for one storage backend.
type Factory interface {
	NewSession(ctx context.Context) interfaces.Session
	NewMemoryRepository(session interfaces.Session) (repository.MemoryRepository, error)
	NewPlanRepository(session interfaces.Session) (repository.PlanRepository, error)
	NewConversationRepository(session interfaces.Session) (repository.ConversationRepository, error)
}
