package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// UserPreferenceRepository persists key-upserted user preferences.
type UserPreferenceRepository struct {
	BaseRepository
}

func NewUserPreferenceRepository(pool *pgxpool.Pool) *UserPreferenceRepository {
	return &UserPreferenceRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *UserPreferenceRepository) Upsert(ctx context.Context, p *models.PreferenceEntry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO user_preference (
			id, key, value, source, confidence, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			source = EXCLUDED.source,
			confidence = EXCLUDED.confidence,
			updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query,
		p.ID, p.Key, p.Value, p.Source, p.Confidence, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *UserPreferenceRepository) GetByKey(ctx context.Context, key string) (*models.PreferenceEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, key, value, source, confidence, created_at, updated_at
		FROM user_preference WHERE key = $1`

	var p models.PreferenceEntry
	err := r.conn(ctx).QueryRow(ctx, query, key).Scan(
		&p.ID, &p.Key, &p.Value, &p.Source, &p.Confidence, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Kind = models.MemoryKindPreference
	return &p, nil
}

func (r *UserPreferenceRepository) Delete(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM user_preference WHERE key = $1`, key)
	return err
}

func (r *UserPreferenceRepository) List(ctx context.Context, limit, offset int) ([]*models.PreferenceEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, key, value, source, confidence, created_at, updated_at
		FROM user_preference ORDER BY updated_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.conn(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PreferenceEntry
	for rows.Next() {
		var p models.PreferenceEntry
		if err := rows.Scan(&p.ID, &p.Key, &p.Value, &p.Source, &p.Confidence, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Kind = models.MemoryKindPreference
		out = append(out, &p)
	}
	return out, rows.Err()
}
