package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type fakeDriverStore struct {
	mu      sync.Mutex
	drivers map[uuid.UUID]model.Driver
}

func newFakeDriverStore() *fakeDriverStore {
	return &fakeDriverStore{drivers: make(map[uuid.UUID]model.Driver)}
}

func (s *fakeDriverStore) Create(_ context.Context, driver *model.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	s.drivers[driver.ID] = *driver
	return nil
}

func (s *fakeDriverStore) GetByID(_ context.Context, businessID, driverID uuid.UUID) (*model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	driver, ok := s.drivers[driverID]
	if !ok || driver.BusinessID != businessID {
		return nil, nil
	}
	return &driver, nil
}

func (s *fakeDriverStore) ListByBusiness(_ context.Context, businessID uuid.UUID) ([]model.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Driver
	for _, driver := range s.drivers {
		if driver.BusinessID == businessID {
			out = append(out, driver)
		}
	}
	return out, nil
}

type fakePositionStore struct {
	mu           sync.Mutex
	observations []model.PositionObservation
	snapshots    map[uuid.UUID]model.DriverLocation
	appendErr    error
}

func newFakePositionStore() *fakePositionStore {
	return &fakePositionStore{snapshots: make(map[uuid.UUID]model.DriverLocation)}
}

func (s *fakePositionStore) Append(_ context.Context, obs *model.PositionObservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	if obs.ID == uuid.Nil {
		obs.ID = uuid.New()
	}
	s.observations = append(s.observations, *obs)
	return nil
}

func (s *fakePositionStore) SaveSnapshot(_ context.Context, loc *model.DriverLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.snapshots[loc.DriverID]
	if ok && existing.ObservedAt.After(loc.ObservedAt) {
		return nil
	}
	s.snapshots[loc.DriverID] = *loc
	return nil
}

func (s *fakePositionStore) GetSnapshot(_ context.Context, driverID uuid.UUID) (*model.DriverLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.snapshots[driverID]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func (s *fakePositionStore) ListByDriver(_ context.Context, driverID uuid.UUID, limit int) ([]model.PositionObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PositionObservation
	for _, obs := range s.observations {
		if obs.DriverID == driverID {
			out = append(out, obs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ObservedAt.After(out[j].ObservedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeGeofenceStore struct {
	mu        sync.Mutex
	geofences map[uuid.UUID]model.Geofence
	listErr   error
}

func newFakeGeofenceStore() *fakeGeofenceStore {
	return &fakeGeofenceStore{geofences: make(map[uuid.UUID]model.Geofence)}
}

func (s *fakeGeofenceStore) Create(_ context.Context, geofence *model.Geofence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if geofence.ID == uuid.Nil {
		geofence.ID = uuid.New()
	}
	s.geofences[geofence.ID] = *geofence
	return nil
}

func (s *fakeGeofenceStore) GetByID(_ context.Context, businessID, geofenceID uuid.UUID) (*model.Geofence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	geofence, ok := s.geofences[geofenceID]
	if !ok || geofence.BusinessID != businessID {
		return nil, nil
	}
	return &geofence, nil
}

func (s *fakeGeofenceStore) ListByBusiness(_ context.Context, businessID uuid.UUID, activeOnly bool) ([]model.Geofence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Geofence
	for _, geofence := range s.geofences {
		if geofence.BusinessID != businessID {
			continue
		}
		if activeOnly && !geofence.Active {
			continue
		}
		out = append(out, geofence)
	}
	return out, nil
}

func (s *fakeGeofenceStore) ListActiveByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Geofence, error) {
	return s.ListByBusiness(ctx, businessID, true)
}

func (s *fakeGeofenceStore) Update(_ context.Context, geofence *model.Geofence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.geofences[geofence.ID] = *geofence
	return nil
}

type fakeGeofenceEventStore struct {
	mu        sync.Mutex
	events    []model.GeofenceEvent
	appendErr func(event *model.GeofenceEvent) error
}

func newFakeGeofenceEventStore() *fakeGeofenceEventStore {
	return &fakeGeofenceEventStore{}
}

func (s *fakeGeofenceEventStore) Append(_ context.Context, event *model.GeofenceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		if err := s.appendErr(event); err != nil {
			return err
		}
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *fakeGeofenceEventStore) GetLatest(_ context.Context, geofenceID, driverID uuid.UUID) (*model.GeofenceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.GeofenceEvent
	for i := range s.events {
		event := s.events[i]
		if event.GeofenceID != geofenceID || event.DriverID != driverID {
			continue
		}
		// Ties go to the later insertion, matching the repository's
		// occurred_at DESC, created_at DESC ordering.
		if latest == nil || !event.OccurredAt.Before(latest.OccurredAt) {
			latest = &event
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	return &out, nil
}

func (s *fakeGeofenceEventStore) ListByDriver(_ context.Context, driverID uuid.UUID, limit int) ([]model.GeofenceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GeofenceEvent
	for _, event := range s.events {
		if event.DriverID == driverID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeGeofenceEventStore) pairEvents(geofenceID, driverID uuid.UUID) []model.GeofenceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.GeofenceEvent
	for _, event := range s.events {
		if event.GeofenceID == geofenceID && event.DriverID == driverID {
			out = append(out, event)
		}
	}
	return out
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[uuid.UUID]model.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]model.Order)}
}

func (s *fakeOrderStore) Create(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, businessID, orderID uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok || order.BusinessID != businessID {
		return nil, nil
	}
	return &order, nil
}

func (s *fakeOrderStore) ListByBusiness(_ context.Context, businessID uuid.UUID, status *model.OrderStatus) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, order := range s.orders {
		if order.BusinessID != businessID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

func (s *fakeOrderStore) Update(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = *order
	return nil
}

func (s *fakeOrderStore) ListOverdue(_ context.Context, asOf time.Time) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, order := range s.orders {
		if order.Status == model.OrderStatusInTransit &&
			order.EstimatedDelivery != nil && order.EstimatedDelivery.Before(asOf) {
			out = append(out, order)
		}
	}
	return out, nil
}

type recordedEvent struct {
	eventType string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Enqueue(eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, payload: payload})
}

func (p *recordingPublisher) byType(eventType string) []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []recordedEvent
	for _, ev := range p.events {
		if ev.eventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
