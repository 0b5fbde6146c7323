package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

// Store interfaces are satisfied by the gorm repositories in
// internal/repository. Lookups return (nil, nil) when no row matches;
// callers translate that into ErrNotFound where it matters.

type DriverStore interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, businessID, driverID uuid.UUID) (*model.Driver, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Driver, error)
}

type PositionStore interface {
	Append(ctx context.Context, obs *model.PositionObservation) error
	SaveSnapshot(ctx context.Context, loc *model.DriverLocation) error
	GetSnapshot(ctx context.Context, driverID uuid.UUID) (*model.DriverLocation, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]model.PositionObservation, error)
}

type GeofenceStore interface {
	Create(ctx context.Context, geofence *model.Geofence) error
	GetByID(ctx context.Context, businessID, geofenceID uuid.UUID) (*model.Geofence, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Geofence, error)
	ListActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Geofence, error)
	Update(ctx context.Context, geofence *model.Geofence) error
}

type GeofenceEventStore interface {
	Append(ctx context.Context, event *model.GeofenceEvent) error
	GetLatest(ctx context.Context, geofenceID, driverID uuid.UUID) (*model.GeofenceEvent, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]model.GeofenceEvent, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, businessID, orderID uuid.UUID) (*model.Order, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, status *model.OrderStatus) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	ListOverdue(ctx context.Context, asOf time.Time) ([]model.Order, error)
}
