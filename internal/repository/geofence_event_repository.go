package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type GeofenceEventRepository struct {
	db *gorm.DB
}

func NewGeofenceEventRepository(db *gorm.DB) *GeofenceEventRepository {
	return &GeofenceEventRepository{db: db}
}

func (r *GeofenceEventRepository) Append(ctx context.Context, event *model.GeofenceEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetLatest returns the most recent event for the pair, the row the
// containment state is derived from. (nil, nil) means the driver has
// never crossed this geofence.
func (r *GeofenceEventRepository) GetLatest(ctx context.Context, geofenceID, driverID uuid.UUID) (*model.GeofenceEvent, error) {
	var event model.GeofenceEvent
	err := r.db.WithContext(ctx).
		Where("geofence_id = ? AND driver_id = ?", geofenceID, driverID).
		Order("occurred_at DESC, created_at DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *GeofenceEventRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]model.GeofenceEvent, error) {
	var events []model.GeofenceEvent
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
