package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// UserProfileRepository persists the singleton user_profile row.
type UserProfileRepository struct {
	BaseRepository
}

func NewUserProfileRepository(pool *pgxpool.Pool) *UserProfileRepository {
	return &UserProfileRepository{BaseRepository: NewBaseRepository(pool)}
}

func (r *UserProfileRepository) Get(ctx context.Context) (*models.UserProfile, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, preferred_languages, communication_style, privacy_level,
			   memory_capture_enabled, created_at, updated_at
		FROM user_profile WHERE id = $1`

	var p models.UserProfile
	err := r.conn(ctx).QueryRow(ctx, query, models.DefaultUserProfileID).Scan(
		&p.ID, &p.PreferredLanguages, &p.CommunicationStyle, &p.PrivacyLevel,
		&p.MemoryCaptureEnabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if checkNoRows(err) {
		profile := models.DefaultUserProfile()
		if err := r.Upsert(ctx, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserProfileRepository) Upsert(ctx context.Context, p *models.UserProfile) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO user_profile (
			id, preferred_languages, communication_style, privacy_level,
			memory_capture_enabled, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			preferred_languages = EXCLUDED.preferred_languages,
			communication_style = EXCLUDED.communication_style,
			privacy_level = EXCLUDED.privacy_level,
			memory_capture_enabled = EXCLUDED.memory_capture_enabled,
			updated_at = EXCLUDED.updated_at`

	_, err := r.conn(ctx).Exec(ctx, query,
		p.ID, p.PreferredLanguages, p.CommunicationStyle, p.PrivacyLevel,
		p.MemoryCaptureEnabled, p.CreatedAt, p.UpdatedAt,
	)
	return err
}
