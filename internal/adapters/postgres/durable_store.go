package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/ports"
)

// DurableStore aggregates every C4 repository behind ports.DurableStore,
// grounded on the teacher's pattern of one BaseRepository-backed struct per
// table plus a pool shared across all of them.
type DurableStore struct {
	pool        *pgxpool.Pool
	profiles    *UserProfileRepository
	preferences *UserPreferenceRepository
	episodic    *EpisodicLogRepository
	metadata    *MemoryMetadataRepository
	manifests   *ManifestRepository
	permissions *PermissionRepository
	executions  *ExecutionLogRepository
	volumes     *VolumeRepository
	discovery   *DiscoveryQueueRepository
	toolStates  *ToolStateRepository
}

func NewDurableStore(pool *pgxpool.Pool) *DurableStore {
	return &DurableStore{
		pool:        pool,
		profiles:    NewUserProfileRepository(pool),
		preferences: NewUserPreferenceRepository(pool),
		episodic:    NewEpisodicLogRepository(pool),
		metadata:    NewMemoryMetadataRepository(pool),
		manifests:   NewManifestRepository(pool),
		permissions: NewPermissionRepository(pool),
		executions:  NewExecutionLogRepository(pool),
		volumes:     NewVolumeRepository(pool),
		discovery:   NewDiscoveryQueueRepository(pool),
		toolStates:  NewToolStateRepository(pool),
	}
}

func (s *DurableStore) Profiles() ports.UserProfileRepository       { return s.profiles }
func (s *DurableStore) Preferences() ports.UserPreferenceRepository { return s.preferences }
func (s *DurableStore) Episodic() ports.EpisodicLogRepository       { return s.episodic }
func (s *DurableStore) Metadata() ports.MemoryMetadataRepository    { return s.metadata }
func (s *DurableStore) Manifests() ports.ManifestRepository         { return s.manifests }
func (s *DurableStore) Permissions() ports.PermissionRepository     { return s.permissions }
func (s *DurableStore) Executions() ports.ExecutionLogRepository    { return s.executions }
func (s *DurableStore) Volumes() ports.VolumeRepository             { return s.volumes }
func (s *DurableStore) Discovery() ports.DiscoveryQueueRepository   { return s.discovery }
func (s *DurableStore) ToolStates() ports.ToolStateRepository       { return s.toolStates }

// ClearAll truncates every durable table in dependency order inside one
// transaction (spec §4.7 full reset), optionally reseeding the default
// user profile row so the singleton invariant holds immediately after.
func (s *DurableStore) ClearAll(ctx context.Context, preserveProfile bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"tool_execution_log",
		"tool_permission",
		"tool_volume",
		"tool_discovery_request",
		"tool_state",
		"tool_manifest",
		"memory_metadata",
		"episodic_log",
		"user_preference",
		"user_profile",
	}
	for _, table := range tables {
		if _, err := tx.Exec(ctx, "TRUNCATE "+table+" CASCADE"); err != nil {
			return err
		}
	}

	if preserveProfile {
		profile := models.DefaultUserProfile()
		if _, err := tx.Exec(ctx, `
			INSERT INTO user_profile (
				id, preferred_languages, communication_style, privacy_level,
				memory_capture_enabled, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			profile.ID, profile.PreferredLanguages, profile.CommunicationStyle, profile.PrivacyLevel,
			profile.MemoryCaptureEnabled, profile.CreatedAt, profile.UpdatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
