package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// ManifestRepository is the CRUD layer over tool manifests (C8).
type ManifestRepository struct {
	BaseRepository
}

func NewManifestRepository(pool *pgxpool.Pool) *ManifestRepository {
	return &ManifestRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *ManifestRepository) Create(ctx context.Context, m *models.ToolManifest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	capabilities, err := json.Marshal(m.Capabilities)
	if err != nil {
		return err
	}
	execution, err := json.Marshal(m.Execution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tool_manifest (
			id, name, version, description, source, source_locator, status,
			schema_payload, capabilities, parameter_schema, execution,
			approved_at, revoked_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = r.conn(ctx).Exec(ctx, query,
		m.ID, m.Name, m.Version, m.Description, m.Source, m.SourceLocator, m.Status,
		m.SchemaPayload, capabilities, m.ParameterSchema, execution,
		nullTime(m.ApprovedAt), nullTime(m.RevokedAt), m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *ManifestRepository) GetByID(ctx context.Context, id string) (*models.ToolManifest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := manifestSelectQuery() + " WHERE id = $1"
	return scanManifest(r.conn(ctx).QueryRow(ctx, query, id))
}

func (r *ManifestRepository) GetByName(ctx context.Context, name string) (*models.ToolManifest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := manifestSelectQuery() + " WHERE name = $1 ORDER BY created_at DESC LIMIT 1"
	return scanManifest(r.conn(ctx).QueryRow(ctx, query, name))
}

func (r *ManifestRepository) Update(ctx context.Context, m *models.ToolManifest) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	capabilities, err := json.Marshal(m.Capabilities)
	if err != nil {
		return err
	}
	execution, err := json.Marshal(m.Execution)
	if err != nil {
		return err
	}

	query := `
		UPDATE tool_manifest SET
			description = $2, status = $3, capabilities = $4, parameter_schema = $5,
			execution = $6, approved_at = $7, revoked_at = $8, updated_at = $9
		WHERE id = $1`

	_, err = r.conn(ctx).Exec(ctx, query,
		m.ID, m.Description, m.Status, capabilities, m.ParameterSchema,
		execution, nullTime(m.ApprovedAt), nullTime(m.RevokedAt), m.UpdatedAt,
	)
	return err
}

func (r *ManifestRepository) List(ctx context.Context, status models.ManifestStatus, limit, offset int) ([]*models.ToolManifest, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}

	query := manifestSelectQuery() + " WHERE 1=1"
	args := []interface{}{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ToolManifest
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func manifestSelectQuery() string {
	return `
		SELECT id, name, version, description, source, source_locator, status,
			   schema_payload, capabilities, parameter_schema, execution,
			   approved_at, revoked_at, created_at, updated_at
		FROM tool_manifest`
}

func scanManifest(row rowScanner) (*models.ToolManifest, error) {
	var (
		m                       models.ToolManifest
		capabilities, execution []byte
		approvedAt, revokedAt   sql.NullTime
	)
	if err := row.Scan(
		&m.ID, &m.Name, &m.Version, &m.Description, &m.Source, &m.SourceLocator, &m.Status,
		&m.SchemaPayload, &capabilities, &m.ParameterSchema, &execution,
		&approvedAt, &revokedAt, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.ApprovedAt = getTimePtr(approvedAt)
	m.RevokedAt = getTimePtr(revokedAt)
	if len(capabilities) > 0 {
		if err := json.Unmarshal(capabilities, &m.Capabilities); err != nil {
			return nil, err
		}
	}
	if len(execution) > 0 {
		if err := json.Unmarshal(execution, &m.Execution); err != nil {
			return nil, err
		}
	}
	return &m, nil
}
