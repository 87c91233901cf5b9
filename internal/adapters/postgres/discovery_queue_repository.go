package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// DiscoveryQueueRepository tracks in-flight tool discovery requests (C10).
type DiscoveryQueueRepository struct {
	BaseRepository
}

func NewDiscoveryQueueRepository(pool *pgxpool.Pool) *DiscoveryQueueRepository {
	return &DiscoveryQueueRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *DiscoveryQueueRepository) Create(ctx context.Context, req *models.ToolDiscoveryRequest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO tool_discovery_request (
			id, description, requester, status, resolved_manifest_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.conn(ctx).Exec(ctx, query,
		req.ID, req.Description, req.Requester, req.Status,
		nullString(req.ResolvedManifestID), req.CreatedAt, req.UpdatedAt,
	)
	return err
}

func (r *DiscoveryQueueRepository) Update(ctx context.Context, req *models.ToolDiscoveryRequest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE tool_discovery_request
		SET status = $2, resolved_manifest_id = $3, updated_at = $4
		WHERE id = $1`

	_, err := r.conn(ctx).Exec(ctx, query, req.ID, req.Status, nullString(req.ResolvedManifestID), req.UpdatedAt)
	return err
}

func (r *DiscoveryQueueRepository) GetByID(ctx context.Context, id string) (*models.ToolDiscoveryRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return scanDiscoveryRequest(r.conn(ctx).QueryRow(ctx, discoverySelectQuery()+" WHERE id = $1", id))
}

func (r *DiscoveryQueueRepository) ListPending(ctx context.Context) ([]*models.ToolDiscoveryRequest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := discoverySelectQuery() + " WHERE status IN ('pending', 'searching') ORDER BY created_at ASC"
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ToolDiscoveryRequest
	for rows.Next() {
		req, err := scanDiscoveryRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func discoverySelectQuery() string {
	return `
		SELECT id, description, requester, status, resolved_manifest_id, created_at, updated_at
		FROM tool_discovery_request`
}

func scanDiscoveryRequest(row rowScanner) (*models.ToolDiscoveryRequest, error) {
	var req models.ToolDiscoveryRequest
	var resolved sql.NullString
	if err := row.Scan(&req.ID, &req.Description, &req.Requester, &req.Status, &resolved, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return nil, err
	}
	req.ResolvedManifestID = getString(resolved)
	return &req, nil
}
