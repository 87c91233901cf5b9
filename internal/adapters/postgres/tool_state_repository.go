package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// ToolStateRepository upserts opaque per-manifest state rows.
type ToolStateRepository struct {
	BaseRepository
}

func NewToolStateRepository(pool *pgxpool.Pool) *ToolStateRepository {
	return &ToolStateRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *ToolStateRepository) Upsert(ctx context.Context, s *models.ToolState) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO tool_state (id, manifest_id, state_key, value, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (manifest_id, state_key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query, s.ID, s.ManifestID, s.StateKey, s.Value, s.UpdatedAt)
	return err
}

func (r *ToolStateRepository) Get(ctx context.Context, manifestID, stateKey string) (*models.ToolState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, manifest_id, state_key, value, updated_at
		FROM tool_state WHERE manifest_id = $1 AND state_key = $2`

	var s models.ToolState
	err := r.conn(ctx).QueryRow(ctx, query, manifestID, stateKey).Scan(&s.ID, &s.ManifestID, &s.StateKey, &s.Value, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
