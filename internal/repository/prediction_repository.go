package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/model"
)

type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Create(record *model.PredictionRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create prediction record failed: %w", err)
	}
	return nil
}

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

func (r *PredictionRepository) ListRecent(limit int) ([]model.PredictionRecord, error) {
	var records []model.PredictionRecord
	if err := r.db.Order("created_at DESC").Limit(normalizeLimit(limit)).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list prediction records failed: %w", err)
	}
	return records, nil
}

// normalizeLimit caps oversized limits instead of resetting them, so a caller
// asking for more than the maximum still gets the maximum.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultRecentLimit
	case limit > maxRecentLimit:
		return maxRecentLimit
	}
	return limit
}
