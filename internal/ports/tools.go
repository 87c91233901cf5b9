package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// ToolRepositoryService (C8) is the CRUD + lifecycle layer over manifests,
// permissions, and execution logs. Tool state and volumes are not part of
// it.
type ToolRepositoryService interface {
	CreateManifest(ctx context.Context, m *models.ToolManifest) error
	GetManifest(ctx context.Context, id string) (*models.ToolManifest, error)
	GetManifestByName(ctx context.Context, name string) (*models.ToolManifest, error)
	ListManifests(ctx context.Context, status models.ManifestStatus, limit, offset int) ([]*models.ToolManifest, error)
	Approve(ctx context.Context, id string) (*models.ToolManifest, error)
	Activate(ctx context.Context, id string) (*models.ToolManifest, error)
	Disable(ctx context.Context, id string) (*models.ToolManifest, error)
	Revoke(ctx context.Context, id string) (*models.ToolManifest, error)

	SetPermission(ctx context.Context, manifestID string, kind models.PermissionKind, value, grantor string) error
	ListPermissions(ctx context.Context, manifestID string) ([]*models.ToolPermission, error)

	StartExecution(ctx context.Context, manifestID, conversationID string, params map[string]any) (*models.ToolExecutionLog, error)
	CompleteExecution(ctx context.Context, log *models.ToolExecutionLog) error
	ListExecutions(ctx context.Context, manifestID string, limit int) ([]*models.ToolExecutionLog, error)
}

// ToolDiscoveryService (C10) ingests local manifest files and remote
// OpenAPI descriptors into pending manifests. Neither path autopublishes.
type ToolDiscoveryService interface {
	DiscoverFromFile(ctx context.Context, path string) (*models.ToolManifest, error)
	DiscoverFromOpenAPI(ctx context.Context, url string) (*models.ToolManifest, error)
	// RequestCapability enqueues a discovery request for a capability the
	// executor couldn't resolve to an existing manifest; returns
	// immediately without blocking.
	RequestCapability(ctx context.Context, description, requester string) (*models.ToolDiscoveryRequest, error)
}

// SandboxExecutor (C9) runs an approved manifest invocation in an
// isolated container and returns the terminal execution log.
type SandboxExecutor interface {
	Execute(ctx context.Context, manifest *models.ToolManifest, perms []*models.ToolPermission, params map[string]any, log *models.ToolExecutionLog) error
	Available() bool
}
