package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"fairFin/business/artifact"
	"fairFin/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArtifactRepository stores published artifacts in model_artifacts, one row
// per (version, name).
type ArtifactRepository struct {
	DB *gorm.DB
}

var _ artifact.Store = (*ArtifactRepository)(nil)

func NewArtifactRepository(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{DB: db}
}

func (r *ArtifactRepository) Get(ctx context.Context, version, name string) ([]byte, error) {
	var row domain.ModelArtifact

	err := r.DB.WithContext(ctx).
		Where("version = ? AND name = ?", version, name).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", artifact.ErrNotFound, version, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	return []byte(row.Payload), nil
}

// Put upserts; republishing a version overwrites its artifacts.
func (r *ArtifactRepository) Put(ctx context.Context, version, name string, data []byte) error {
	sum := sha256.Sum256(data)
	row := domain.ModelArtifact{
		Version:  version,
		Name:     name,
		Payload:  data,
		Checksum: hex.EncodeToString(sum[:]),
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "version"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"payload",
				"checksum",
				"updated_at",
			}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert artifact: %w", err)
	}
	return nil
}
