package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	idgen "github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/domain/models"
)

// VolumeRepository tracks per-manifest named persistent volumes (C9).
type VolumeRepository struct {
	BaseRepository
	ids *idgen.Generator
}

func NewVolumeRepository(pool *pgxpool.Pool) *VolumeRepository {
	return &VolumeRepository{BaseRepository: NewBaseRepository(pool), ids: idgen.New()}
}

func (r *VolumeRepository) GetOrCreate(ctx context.Context, manifestID, name, mountPath string, quotaMB int) (*models.ToolVolume, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var v models.ToolVolume
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, manifest_id, name, mount_path, quota_mb, created_at
		FROM tool_volume WHERE manifest_id = $1 AND name = $2`, manifestID, name,
	).Scan(&v.ID, &v.ManifestID, &v.Name, &v.MountPath, &v.QuotaMB, &v.CreatedAt)
	if err == nil {
		return &v, nil
	}
	if !checkNoRows(err) {
		return nil, err
	}

	v = models.ToolVolume{ID: r.ids.GenerateVolumeID(), ManifestID: manifestID, Name: name, MountPath: mountPath, QuotaMB: quotaMB}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO tool_volume (id, manifest_id, name, mount_path, quota_mb, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`, v.ID, v.ManifestID, v.Name, v.MountPath, v.QuotaMB)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VolumeRepository) DeleteByManifest(ctx context.Context, manifestID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM tool_volume WHERE manifest_id = $1`, manifestID)
	return err
}
