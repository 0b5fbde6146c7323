package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
	"github.com/xamuel98/ZoneFlow-sub001/internal/geo"
	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

type OrderService struct {
	orderStore  OrderStore
	driverStore DriverStore
	publisher   broadcast.Publisher
	log         zerolog.Logger
}

func NewOrderService(orderStore OrderStore, driverStore DriverStore, publisher broadcast.Publisher, log zerolog.Logger) *OrderService {
	return &OrderService{
		orderStore:  orderStore,
		driverStore: driverStore,
		publisher:   publisher,
		log:         log,
	}
}

type CreateOrderInput struct {
	Priority          model.OrderPriority
	PickupLatitude    float64
	PickupLongitude   float64
	DeliveryLatitude  float64
	DeliveryLongitude float64
	EstimatedDelivery *time.Time
	Notes             string
}

func (s *OrderService) Create(ctx context.Context, businessID uuid.UUID, input CreateOrderInput) (*model.Order, error) {
	if !geo.ValidCoordinates(input.PickupLatitude, input.PickupLongitude) ||
		!geo.ValidCoordinates(input.DeliveryLatitude, input.DeliveryLongitude) {
		return nil, ErrInvalidInput
	}
	if input.Priority == "" {
		input.Priority = model.OrderPriorityNormal
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidInput
	}

	order := &model.Order{
		BusinessID:        businessID,
		Status:            model.OrderStatusPending,
		Priority:          input.Priority,
		PickupLatitude:    input.PickupLatitude,
		PickupLongitude:   input.PickupLongitude,
		DeliveryLatitude:  input.DeliveryLatitude,
		DeliveryLongitude: input.DeliveryLongitude,
		EstimatedDelivery: input.EstimatedDelivery,
		Notes:             input.Notes,
	}

	if err := s.orderStore.Create(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

func (s *OrderService) Get(ctx context.Context, businessID, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderStore.GetByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, businessID uuid.UUID, status *model.OrderStatus) ([]model.Order, error) {
	if status != nil && !status.Valid() {
		return nil, ErrInvalidInput
	}
	return s.orderStore.ListByBusiness(ctx, businessID, status)
}

// UpdateStatus applies one lifecycle transition. Illegal moves fail
// with ErrInvalidInput naming both states; actual_pickup and
// actual_delivery are stamped the first time their status is reached
// and never overwritten.
func (s *OrderService) UpdateStatus(ctx context.Context, businessID, orderID uuid.UUID, newStatus model.OrderStatus, notes string) (*model.Order, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, newStatus)
	}

	order, err := s.orderStore.GetByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	if !order.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: cannot transition order from %s to %s", ErrInvalidInput, order.Status, newStatus)
	}

	previous := order.Status
	order.Status = newStatus

	now := time.Now().UTC()
	if newStatus == model.OrderStatusPickedUp && order.ActualPickup == nil {
		order.ActualPickup = &now
	}
	if newStatus == model.OrderStatusDelivered && order.ActualDelivery == nil {
		order.ActualDelivery = &now
	}
	if notes != "" {
		order.Notes = appendNote(order.Notes, notes)
	}

	if err := s.orderStore.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishStatusChange(order, previous)
	return order, nil
}

// AssignDriver sets the driver and moves the order to assigned. Only
// pending and assigned orders are eligible: re-dispatching an order
// that is already picked up or in transit requires cancelling it
// first, so assignment can never rewind a lifecycle in progress.
func (s *OrderService) AssignDriver(ctx context.Context, businessID, orderID, driverID uuid.UUID) (*model.Order, error) {
	order, err := s.orderStore.GetByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	driver, err := s.driverStore.GetByID(ctx, businessID, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrNotFound
	}

	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusAssigned {
		return nil, fmt.Errorf("%w: cannot assign driver to order in status %s", ErrInvalidInput, order.Status)
	}

	previous := order.Status
	order.DriverID = &driverID
	order.Status = model.OrderStatusAssigned

	if err := s.orderStore.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishStatusChange(order, previous)
	return order, nil
}

func (s *OrderService) Cancel(ctx context.Context, businessID, orderID uuid.UUID, reason string) (*model.Order, error) {
	order, err := s.orderStore.GetByID(ctx, businessID, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	if order.Status == model.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: cannot cancel a delivered order", ErrInvalidInput)
	}
	if order.Status == model.OrderStatusCancelled {
		return order, nil
	}

	previous := order.Status
	order.Status = model.OrderStatusCancelled
	if reason != "" {
		order.Notes = appendNote(order.Notes, "cancelled: "+reason)
	}

	if err := s.orderStore.Update(ctx, order); err != nil {
		return nil, err
	}

	s.publishStatusChange(order, previous)
	return order, nil
}

type orderStatusChange struct {
	Order          *model.Order      `json:"order"`
	PreviousStatus model.OrderStatus `json:"previous_status"`
}

func (s *OrderService) publishStatusChange(order *model.Order, previous model.OrderStatus) {
	s.publisher.Enqueue(broadcast.EventOrderStatusChanged, orderStatusChange{
		Order:          order,
		PreviousStatus: previous,
	})
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
