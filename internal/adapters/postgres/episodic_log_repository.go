package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// EpisodicLogRepository is the append-only C4 episodic audit log. Rows are
// never updated or deleted directly; compensation happens through
// MemoryMetadataRepository.SoftDelete (spec §9 open question 1).
type EpisodicLogRepository struct {
	BaseRepository
}

func NewEpisodicLogRepository(pool *pgxpool.Pool) *EpisodicLogRepository {
	return &EpisodicLogRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *EpisodicLogRepository) Append(ctx context.Context, e *models.EpisodicEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO episodic_log (
			id, agent, action_type, summary, confidence, metadata, event_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.conn(ctx).Exec(ctx, query,
		e.ID, e.Agent, e.ActionType, e.Summary, e.Confidence, metadata, e.EventTime, e.CreatedAt,
	)
	return err
}

func (r *EpisodicLogRepository) Recent(ctx context.Context, limit int) ([]*models.EpisodicEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, agent, action_type, summary, confidence, metadata, event_time, created_at
		FROM episodic_log ORDER BY event_time DESC LIMIT $1`

	rows, err := r.conn(ctx).Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EpisodicEntry
	for rows.Next() {
		e, err := scanEpisodicEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EpisodicLogRepository) Get(ctx context.Context, id string) (*models.EpisodicEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, agent, action_type, summary, confidence, metadata, event_time, created_at
		FROM episodic_log WHERE id = $1`

	return scanEpisodicEntry(r.conn(ctx).QueryRow(ctx, query, id))
}

func scanEpisodicEntry(row rowScanner) (*models.EpisodicEntry, error) {
	var e models.EpisodicEntry
	var metadata []byte
	if err := row.Scan(&e.ID, &e.Agent, &e.ActionType, &e.Summary, &e.Confidence, &metadata, &e.EventTime, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Kind = models.MemoryKindEpisodic
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
