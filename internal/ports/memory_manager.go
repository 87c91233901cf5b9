package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// MemoryListFilter selects records for the inspector listing.
type MemoryListFilter struct {
	Kind           models.MemoryKind
	Source         models.MetadataSource
	Limit          int
	Offset         int
	IncludeDeleted bool
}

// MemoryUpdate is a partial update applied through the inspector.
type MemoryUpdate struct {
	Content    *string
	Confidence *float64
}

// ResetResult reports which of the three stores a full reset cleared.
type ResetResult struct {
	Ephemeral bool
	Vector    bool
	Durable   bool
}

func (r ResetResult) AllSucceeded() bool {
	return r.Ephemeral && r.Vector && r.Durable
}

// HealthStatus reports liveness of the three backing stores.
type HealthStatus struct {
	Ephemeral bool
	Vector    bool
	Durable   bool
}

// MemoryManager (C7) is the facade aggregating C1-C6: retrieval, turn
// storage, writes, profile management, inspector operations, reset, and
// health.
type MemoryManager interface {
	Retrieve(ctx context.Context, req RetrievalRequest) (*MemoryContext, error)
	StoreTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error
	GetRecentTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)

	WriteMemory(ctx context.Context, req WriteRequest, approval VerifierApproval) (*WriteResult, error)
	WriteMemoryDirect(ctx context.Context, req WriteRequest) (*WriteResult, error)

	GetProfile(ctx context.Context) (*models.UserProfile, error)
	SetProfile(ctx context.Context, p *models.UserProfile) error

	List(ctx context.Context, filter MemoryListFilter) ([]*models.MemoryMetadata, int, error)
	Get(ctx context.Context, memoryID string) (*models.MemoryMetadata, error)
	Update(ctx context.Context, memoryID string, upd MemoryUpdate) error
	Delete(ctx context.Context, memoryID string) error

	FullReset(ctx context.Context, preserveProfile bool) (ResetResult, error)
	Health(ctx context.Context) HealthStatus
}
