package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/model"
)

type StationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) *StationRepository {
	return &StationRepository{db: db}
}

func (r *StationRepository) Create(station *model.Station) error {
	if err := r.db.Create(station).Error; err != nil {
		return fmt.Errorf("create station failed: %w", err)
	}
	return nil
}

func (r *StationRepository) GetByName(name string) (*model.Station, error) {
	var station model.Station
	if err := r.db.Where("name = ?", name).First(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query station by name failed: %w", err)
	}
	return &station, nil
}

func (r *StationRepository) GetByEmail(email string) (*model.Station, error) {
	var station model.Station
	if err := r.db.Where("email = ?", email).First(&station).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query station by email failed: %w", err)
	}
	return &station, nil
}

func (r *StationRepository) GetByID(id uint) (*model.Station, error) {
	var station model.Station
	if err := r.db.First(&station, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query station by id failed: %w", err)
	}
	return &station, nil
}
