package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/dashprint/backend/internal/infrastructure/persistence/models"
)

// GormProfileRepository reads stored profile values. It never writes.
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// GetString returns the newest string value stored under idx and idx2, or
// an empty string when there is none.
func (r *GormProfileRepository) GetString(ctx context.Context, idx string, idx2 uint64) (string, error) {
	var rows []models.ProfileModel
	err := r.db.WithContext(ctx).
		Where("idx = ? AND idx2 = ?", idx, idx2).
		Order("profileid DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].ValueStr, nil
}
