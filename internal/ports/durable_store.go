package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// UserProfileRepository persists the singleton C4 user profile row.
type UserProfileRepository interface {
	Get(ctx context.Context) (*models.UserProfile, error)
	Upsert(ctx context.Context, p *models.UserProfile) error
}

// UserPreferenceRepository persists key-upserted preferences.
type UserPreferenceRepository interface {
	Upsert(ctx context.Context, p *models.PreferenceEntry) error
	GetByKey(ctx context.Context, key string) (*models.PreferenceEntry, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, limit, offset int) ([]*models.PreferenceEntry, error)
}

// EpisodicLogRepository is the append-only episodic log.
type EpisodicLogRepository interface {
	Append(ctx context.Context, e *models.EpisodicEntry) error
	Recent(ctx context.Context, limit int) ([]*models.EpisodicEntry, error)
	Get(ctx context.Context, id string) (*models.EpisodicEntry, error)
}

// MemoryMetadataRepository is the cross-store index over every persisted
// memory entry (C4 §4.4: track_memory/compensating delete).
type MemoryMetadataRepository interface {
	Insert(ctx context.Context, m *models.MemoryMetadata) error
	GetByEntryID(ctx context.Context, entryID string) (*models.MemoryMetadata, error)
	Update(ctx context.Context, m *models.MemoryMetadata) error
	SoftDelete(ctx context.Context, entryID string) error
	Delete(ctx context.Context, entryID string) error
	List(ctx context.Context, kind models.MemoryKind, source models.MetadataSource, includeDeleted bool, limit, offset int) ([]*models.MemoryMetadata, int, error)
}

// ManifestRepository is the CRUD layer over tool manifests (C8).
type ManifestRepository interface {
	Create(ctx context.Context, m *models.ToolManifest) error
	GetByID(ctx context.Context, id string) (*models.ToolManifest, error)
	GetByName(ctx context.Context, name string) (*models.ToolManifest, error)
	Update(ctx context.Context, m *models.ToolManifest) error
	List(ctx context.Context, status models.ManifestStatus, limit, offset int) ([]*models.ToolManifest, error)
}

// PermissionRepository upserts on (ManifestID, Kind).
type PermissionRepository interface {
	Upsert(ctx context.Context, p *models.ToolPermission) error
	ListByManifest(ctx context.Context, manifestID string) ([]*models.ToolPermission, error)
}

// ExecutionLogRepository is the append-then-update-once log (C8 §3).
type ExecutionLogRepository interface {
	Create(ctx context.Context, l *models.ToolExecutionLog) error
	Complete(ctx context.Context, l *models.ToolExecutionLog) error
	GetByID(ctx context.Context, id string) (*models.ToolExecutionLog, error)
	ListByManifest(ctx context.Context, manifestID string, limit int) ([]*models.ToolExecutionLog, error)
}

// VolumeRepository tracks per-manifest named volumes.
type VolumeRepository interface {
	GetOrCreate(ctx context.Context, manifestID, name, mountPath string, quotaMB int) (*models.ToolVolume, error)
	DeleteByManifest(ctx context.Context, manifestID string) error
}

// DiscoveryQueueRepository tracks in-flight tool discovery requests.
type DiscoveryQueueRepository interface {
	Create(ctx context.Context, r *models.ToolDiscoveryRequest) error
	Update(ctx context.Context, r *models.ToolDiscoveryRequest) error
	GetByID(ctx context.Context, id string) (*models.ToolDiscoveryRequest, error)
	ListPending(ctx context.Context) ([]*models.ToolDiscoveryRequest, error)
}

// ToolStateRepository upserts opaque per-manifest state rows.
type ToolStateRepository interface {
	Upsert(ctx context.Context, s *models.ToolState) error
	Get(ctx context.Context, manifestID, stateKey string) (*models.ToolState, error)
}

// DurableStore groups every C4 repository plus the transactional and
// full-reset operations the memory manager (C7) and tool repository
// service (C8) need.
type DurableStore interface {
	Profiles() UserProfileRepository
	Preferences() UserPreferenceRepository
	Episodic() EpisodicLogRepository
	Metadata() MemoryMetadataRepository
	Manifests() ManifestRepository
	Permissions() PermissionRepository
	Executions() ExecutionLogRepository
	Volumes() VolumeRepository
	Discovery() DiscoveryQueueRepository
	ToolStates() ToolStateRepository

	// ClearAll truncates every table in dependency order inside one
	// transaction, optionally recreating the default profile row.
	ClearAll(ctx context.Context, preserveProfile bool) error
}
