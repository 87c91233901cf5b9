package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// MemoryMetadataRepository is the cross-store index over every persisted
// Semantic/Episodic/Preference entry (spec §4.4).
type MemoryMetadataRepository struct {
	BaseRepository
}

func NewMemoryMetadataRepository(pool *pgxpool.Pool) *MemoryMetadataRepository {
	return &MemoryMetadataRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *MemoryMetadataRepository) Insert(ctx context.Context, m *models.MemoryMetadata) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO memory_metadata (
			id, entry_id, kind, store, summary, source, confidence, deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.conn(ctx).Exec(ctx, query,
		m.ID, m.EntryID, m.Kind, m.Store, m.Summary, m.Source, m.Confidence, m.Deleted, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (r *MemoryMetadataRepository) GetByEntryID(ctx context.Context, entryID string) (*models.MemoryMetadata, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, entry_id, kind, store, summary, source, confidence, deleted, created_at, updated_at
		FROM memory_metadata WHERE entry_id = $1`

	return scanMemoryMetadata(r.conn(ctx).QueryRow(ctx, query, entryID))
}

func (r *MemoryMetadataRepository) Update(ctx context.Context, m *models.MemoryMetadata) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE memory_metadata
		SET summary = $2, confidence = $3, deleted = $4, updated_at = $5
		WHERE entry_id = $1`

	_, err := r.conn(ctx).Exec(ctx, query, m.EntryID, m.Summary, m.Confidence, m.Deleted, m.UpdatedAt)
	return err
}

func (r *MemoryMetadataRepository) SoftDelete(ctx context.Context, entryID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE memory_metadata SET deleted = true, updated_at = now() WHERE entry_id = $1`, entryID)
	return err
}

func (r *MemoryMetadataRepository) Delete(ctx context.Context, entryID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM memory_metadata WHERE entry_id = $1`, entryID)
	return err
}

func (r *MemoryMetadataRepository) List(ctx context.Context, kind models.MemoryKind, source models.MetadataSource, includeDeleted bool, limit, offset int) ([]*models.MemoryMetadata, int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 50
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	if kind != "" {
		args = append(args, kind)
		where += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if source != "" {
		args = append(args, source)
		where += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if !includeDeleted {
		where += " AND deleted = false"
	}

	var total int
	countQuery := "SELECT count(*) FROM memory_metadata " + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, entry_id, kind, store, summary, source, confidence, deleted, created_at, updated_at
		FROM memory_metadata %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*models.MemoryMetadata
	for rows.Next() {
		m, err := scanMemoryMetadata(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func scanMemoryMetadata(row rowScanner) (*models.MemoryMetadata, error) {
	var m models.MemoryMetadata
	if err := row.Scan(
		&m.ID, &m.EntryID, &m.Kind, &m.Store, &m.Summary, &m.Source,
		&m.Confidence, &m.Deleted, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
