package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xamuel98/ZoneFlow-sub001/internal/geo"
	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

const defaultHistoryLimit = 100

type LocationService struct {
	driverStore     DriverStore
	positionStore   PositionStore
	geofenceService *GeofenceService
	log             zerolog.Logger
}

func NewLocationService(
	driverStore DriverStore,
	positionStore PositionStore,
	geofenceService *GeofenceService,
	log zerolog.Logger,
) *LocationService {
	return &LocationService{
		driverStore:     driverStore,
		positionStore:   positionStore,
		geofenceService: geofenceService,
		log:             log,
	}
}

type RecordPositionInput struct {
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
	Speed      *float64
	Heading    *float64
	ObservedAt *time.Time
	OrderID    *uuid.UUID
}

type RecordPositionResult struct {
	Location       *model.DriverLocation `json:"location"`
	GeofenceEvents []TriggeredEvent      `json:"geofence_events"`
}

// RecordPosition appends the observation to the history log, refreshes
// the driver's current-location snapshot and, when the observation is
// tied to an order, runs geofence evaluation synchronously so the
// caller sees any transitions in the response.
func (s *LocationService) RecordPosition(ctx context.Context, businessID, driverID uuid.UUID, input RecordPositionInput) (*RecordPositionResult, error) {
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return nil, ErrInvalidInput
	}

	driver, err := s.driverStore.GetByID(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	observedAt := time.Now().UTC()
	if input.ObservedAt != nil {
		observedAt = input.ObservedAt.UTC()
	}

	obs := &model.PositionObservation{
		DriverID:   driverID,
		OrderID:    input.OrderID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Accuracy:   input.Accuracy,
		Speed:      input.Speed,
		Heading:    input.Heading,
		ObservedAt: observedAt,
	}

	if err := s.positionStore.Append(ctx, obs); err != nil {
		return nil, err
	}

	// The snapshot write is conditional on observed_at, so a stale
	// observation lands in history without clobbering a newer snapshot.
	snapshot := &model.DriverLocation{
		DriverID:   driverID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Accuracy:   input.Accuracy,
		Speed:      input.Speed,
		Heading:    input.Heading,
		ObservedAt: observedAt,
	}
	if err := s.positionStore.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	result := &RecordPositionResult{Location: snapshot}

	if input.OrderID != nil {
		events, err := s.geofenceService.Evaluate(ctx, businessID, driverID, input.Latitude, input.Longitude, input.OrderID)
		if err != nil {
			// The position write already succeeded; a geofence pass
			// failure must not fail the whole request.
			s.log.Error().Err(err).
				Str("driver_id", driverID.String()).
				Msg("geofence evaluation failed after position write")
		} else {
			result.GeofenceEvents = events
		}
	}

	return result, nil
}

func (s *LocationService) CurrentLocation(ctx context.Context, businessID, driverID uuid.UUID) (*model.DriverLocation, error) {
	driver, err := s.driverStore.GetByID(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	loc, err := s.positionStore.GetSnapshot(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrNotFound
	}
	return loc, nil
}

func (s *LocationService) History(ctx context.Context, businessID, driverID uuid.UUID, limit int) ([]model.PositionObservation, error) {
	driver, err := s.driverStore.GetByID(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	if limit <= 0 || limit > 1000 {
		limit = defaultHistoryLimit
	}
	return s.positionStore.ListByDriver(ctx, driverID, limit)
}
