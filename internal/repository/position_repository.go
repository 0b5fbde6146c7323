package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Append(ctx context.Context, obs *model.PositionObservation) error {
	return r.db.WithContext(ctx).Create(obs).Error
}

// SaveSnapshot upserts the driver's current location. The WHERE clause
// on the conflict branch makes the write conditional on observed_at,
// so a late-arriving older observation leaves a newer snapshot alone.
func (r *PositionRepository) SaveSnapshot(ctx context.Context, loc *model.DriverLocation) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO driver_locations (driver_id, latitude, longitude, accuracy, speed, heading, observed_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (driver_id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			accuracy = EXCLUDED.accuracy,
			speed = EXCLUDED.speed,
			heading = EXCLUDED.heading,
			observed_at = EXCLUDED.observed_at,
			updated_at = NOW()
		WHERE driver_locations.observed_at <= EXCLUDED.observed_at`,
		loc.DriverID, loc.Latitude, loc.Longitude, loc.Accuracy, loc.Speed, loc.Heading, loc.ObservedAt,
	).Error
}

func (r *PositionRepository) GetSnapshot(ctx context.Context, driverID uuid.UUID) (*model.DriverLocation, error) {
	var loc model.DriverLocation
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		First(&loc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PositionRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]model.PositionObservation, error) {
	var observations []model.PositionObservation
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("observed_at DESC").
		Limit(limit).
		Find(&observations).Error
	if err != nil {
		return nil, err
	}
	return observations, nil
}
