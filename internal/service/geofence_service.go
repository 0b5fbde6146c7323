package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
	"github.com/xamuel98/ZoneFlow-sub001/internal/geo"
	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type GeofenceService struct {
	geofenceStore GeofenceStore
	eventStore    GeofenceEventStore
	publisher     broadcast.Publisher
	log           zerolog.Logger
	pairLocks     pairLocks
}

func NewGeofenceService(
	geofenceStore GeofenceStore,
	eventStore GeofenceEventStore,
	publisher broadcast.Publisher,
	log zerolog.Logger,
) *GeofenceService {
	return &GeofenceService{
		geofenceStore: geofenceStore,
		eventStore:    eventStore,
		publisher:     publisher,
		log:           log,
		pairLocks:     pairLocks{locks: make(map[pairKey]*sync.Mutex)},
	}
}

// TriggeredEvent is an enter/exit transition emitted by a single
// Evaluate call, along with the distance that produced it.
type TriggeredEvent struct {
	Event          model.GeofenceEvent `json:"event"`
	DistanceMeters float64             `json:"distance_meters"`
}

// Evaluate checks the position against every active geofence of the
// business and emits enter/exit transitions. A geofence whose latest
// event already matches the current containment state emits nothing,
// so re-evaluating an unchanged position is a no-op. A persistence
// failure on one geofence is logged and does not stop evaluation of
// the rest.
func (s *GeofenceService) Evaluate(ctx context.Context, businessID, driverID uuid.UUID, lat, lng float64, orderID *uuid.UUID) ([]TriggeredEvent, error) {
	if !geo.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidInput
	}

	geofences, err := s.geofenceStore.ListActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	var triggered []TriggeredEvent
	for i := range geofences {
		gf := &geofences[i]

		distance := geo.DistanceMeters(lat, lng, gf.CenterLatitude, gf.CenterLongitude)
		isInside := distance <= gf.RadiusMeters

		event, err := s.transition(ctx, gf, driverID, orderID, lat, lng, isInside)
		if err != nil {
			s.log.Error().Err(err).
				Str("geofence_id", gf.ID.String()).
				Str("driver_id", driverID.String()).
				Msg("geofence evaluation failed, skipping zone")
			continue
		}
		if event != nil {
			triggered = append(triggered, TriggeredEvent{Event: *event, DistanceMeters: distance})
		}
	}

	for _, te := range triggered {
		eventType := broadcast.EventGeofenceEnter
		if te.Event.EventType == model.GeofenceEventExit {
			eventType = broadcast.EventGeofenceExit
		}
		s.publisher.Enqueue(eventType, te.Event)
	}

	return triggered, nil
}

// transition holds the per-pair lock across the read-latest-then-insert
// section so concurrent evaluations cannot both observe the same prior
// state and emit duplicate events, which would break the strict
// enter/exit alternation.
func (s *GeofenceService) transition(ctx context.Context, gf *model.Geofence, driverID uuid.UUID, orderID *uuid.UUID, lat, lng float64, isInside bool) (*model.GeofenceEvent, error) {
	lock := s.pairLocks.get(gf.ID, driverID)
	lock.Lock()
	defer lock.Unlock()

	latest, err := s.eventStore.GetLatest(ctx, gf.ID, driverID)
	if err != nil {
		return nil, err
	}

	currentlyInside := latest != nil && latest.EventType == model.GeofenceEventEnter
	if isInside == currentlyInside {
		return nil, nil
	}

	eventType := model.GeofenceEventEnter
	if !isInside {
		eventType = model.GeofenceEventExit
	}

	event := &model.GeofenceEvent{
		GeofenceID: gf.ID,
		DriverID:   driverID,
		OrderID:    orderID,
		EventType:  eventType,
		Latitude:   lat,
		Longitude:  lng,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.eventStore.Append(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

type CreateGeofenceInput struct {
	Name         string
	Type         model.GeofenceType
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

func (s *GeofenceService) Create(ctx context.Context, businessID uuid.UUID, input CreateGeofenceInput) (*model.Geofence, error) {
	if input.Name == "" || input.RadiusMeters <= 0 {
		return nil, ErrInvalidInput
	}
	if !geo.ValidCoordinates(input.Latitude, input.Longitude) {
		return nil, ErrInvalidInput
	}
	if input.Type == "" {
		input.Type = model.GeofenceTypeCustom
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidInput
	}

	geofence := &model.Geofence{
		BusinessID:      businessID,
		Name:            input.Name,
		Type:            input.Type,
		CenterLatitude:  input.Latitude,
		CenterLongitude: input.Longitude,
		RadiusMeters:    input.RadiusMeters,
		Active:          true,
	}

	if err := s.geofenceStore.Create(ctx, geofence); err != nil {
		return nil, err
	}

	return geofence, nil
}

func (s *GeofenceService) List(ctx context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Geofence, error) {
	return s.geofenceStore.ListByBusiness(ctx, businessID, activeOnly)
}

func (s *GeofenceService) Deactivate(ctx context.Context, businessID, geofenceID uuid.UUID) (*model.Geofence, error) {
	geofence, err := s.geofenceStore.GetByID(ctx, businessID, geofenceID)
	if err != nil {
		return nil, err
	}
	if geofence == nil {
		return nil, ErrNotFound
	}

	if geofence.Active {
		geofence.Active = false
		if err := s.geofenceStore.Update(ctx, geofence); err != nil {
			return nil, err
		}
	}

	return geofence, nil
}

// EventsForDriver returns the driver's recent enter/exit transitions
// across all geofences, newest first.
func (s *GeofenceService) EventsForDriver(ctx context.Context, driverID uuid.UUID, limit int) ([]model.GeofenceEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	return s.eventStore.ListByDriver(ctx, driverID, limit)
}

type pairKey struct {
	geofenceID uuid.UUID
	driverID   uuid.UUID
}

// pairLocks hands out one mutex per (geofence, driver) pair. Entries
// are never evicted; the population is bounded by geofences x drivers,
// both small.
type pairLocks struct {
	mu    sync.Mutex
	locks map[pairKey]*sync.Mutex
}

func (p *pairLocks) get(geofenceID, driverID uuid.UUID) *sync.Mutex {
	key := pairKey{geofenceID: geofenceID, driverID: driverID}

	p.mu.Lock()
	defer p.mu.Unlock()

	lock, ok := p.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[key] = lock
	}
	return lock
}
