package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type GeofenceRepository struct {
	db *gorm.DB
}

func NewGeofenceRepository(db *gorm.DB) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

func (r *GeofenceRepository) Create(ctx context.Context, geofence *model.Geofence) error {
	return r.db.WithContext(ctx).Create(geofence).Error
}

func (r *GeofenceRepository) GetByID(ctx context.Context, businessID, geofenceID uuid.UUID) (*model.Geofence, error) {
	var geofence model.Geofence
	err := r.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", geofenceID, businessID).
		First(&geofence).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &geofence, nil
}

func (r *GeofenceRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Geofence, error) {
	var geofences []model.Geofence
	query := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Order("created_at DESC").Find(&geofences).Error; err != nil {
		return nil, err
	}
	return geofences, nil
}

func (r *GeofenceRepository) ListActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Geofence, error) {
	return r.ListByBusiness(ctx, businessID, true)
}

func (r *GeofenceRepository) Update(ctx context.Context, geofence *model.Geofence) error {
	return r.db.WithContext(ctx).Save(geofence).Error
}
