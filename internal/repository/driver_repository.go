package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) GetByID(ctx context.Context, businessID, driverID uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", driverID, businessID).
		First(&driver).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&drivers).Error
	if err != nil {
		return nil, err
	}
	return drivers, nil
}
