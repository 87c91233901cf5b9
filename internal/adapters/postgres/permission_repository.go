package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// PermissionRepository upserts on (manifest_id, kind), the grant unit the
// sandbox executor (C9) reads per-container.
type PermissionRepository struct {
	BaseRepository
}

func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *PermissionRepository) Upsert(ctx context.Context, p *models.ToolPermission) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO tool_permission (
			id, manifest_id, kind, value, grantor, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (manifest_id, kind) DO UPDATE SET
			value = EXCLUDED.value,
			grantor = EXCLUDED.grantor,
			updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query,
		p.ID, p.ManifestID, p.Kind, p.Value, p.Grantor, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *PermissionRepository) ListByManifest(ctx context.Context, manifestID string) ([]*models.ToolPermission, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, manifest_id, kind, value, grantor, created_at, updated_at
		FROM tool_permission WHERE manifest_id = $1`

	rows, err := r.conn(ctx).Query(ctx, query, manifestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ToolPermission
	for rows.Next() {
		var p models.ToolPermission
		if err := rows.Scan(&p.ID, &p.ManifestID, &p.Kind, &p.Value, &p.Grantor, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
