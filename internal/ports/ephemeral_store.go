package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// EphemeralStore is the C2 session buffer: per-conversation turn list,
// session context, and tool outputs, all with TTL. Every write refreshes
// the TTL. Writes for a given conversation are serialised by the
// orchestrator, so no intra-store locking is required.
type EphemeralStore interface {
	AppendTurn(ctx context.Context, conversationID string, turn models.ConversationTurn) error
	GetTurns(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
	ClearTurns(ctx context.Context, conversationID string) error

	GetSessionContext(ctx context.Context, sessionID string) (*models.SessionContext, error)
	SetSessionContext(ctx context.Context, sc *models.SessionContext) error

	GetToolOutput(ctx context.Context, sessionID, toolName string) (any, bool, error)
	SetToolOutput(ctx context.Context, sessionID, toolName string, output any) error
	ScanToolOutputs(ctx context.Context, sessionID string) (map[string]any, error)

	// ResetAll deletes every key in the store's namespace (C7 full reset).
	ResetAll(ctx context.Context) error
}
