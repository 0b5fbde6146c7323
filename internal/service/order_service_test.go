package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xamuel98/ZoneFlow-sub001/internal/broadcast"
	"github.com/xamuel98/ZoneFlow-sub001/internal/model"
)

func newOrderFixture(t *testing.T) (*OrderService, *fakeOrderStore, *fakeDriverStore, *recordingPublisher) {
	t.Helper()
	orderStore := newFakeOrderStore()
	driverStore := newFakeDriverStore()
	publisher := &recordingPublisher{}
	svc := NewOrderService(orderStore, driverStore, publisher, zerolog.Nop())
	return svc, orderStore, driverStore, publisher
}

func createOrder(t *testing.T, svc *OrderService, businessID uuid.UUID) *model.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), businessID, CreateOrderInput{
		PickupLatitude:    40.7128,
		PickupLongitude:   -74.0060,
		DeliveryLatitude:  40.7306,
		DeliveryLongitude: -73.9352,
	})
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusPending, order.Status)
	return order
}

func createDriver(t *testing.T, store *fakeDriverStore, businessID uuid.UUID) *model.Driver {
	t.Helper()
	driver := &model.Driver{BusinessID: businessID, Name: "driver", Active: true}
	require.NoError(t, store.Create(context.Background(), driver))
	return driver
}

func TestUpdateStatus_HappyPathStampsTimestamps(t *testing.T) {
	svc, _, driverStore, publisher := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)
	driver := createDriver(t, driverStore, businessID)

	_, err := svc.AssignDriver(context.Background(), businessID, order.ID, driver.ID)
	require.NoError(t, err)

	order, err = svc.UpdateStatus(context.Background(), businessID, order.ID, model.OrderStatusPickedUp, "")
	require.NoError(t, err)
	require.NotNil(t, order.ActualPickup)
	pickupAt := *order.ActualPickup
	assert.WithinDuration(t, time.Now().UTC(), pickupAt, time.Second)
	assert.Nil(t, order.ActualDelivery)

	order, err = svc.UpdateStatus(context.Background(), businessID, order.ID, model.OrderStatusInTransit, "")
	require.NoError(t, err)
	assert.Equal(t, pickupAt, *order.ActualPickup)

	order, err = svc.UpdateStatus(context.Background(), businessID, order.ID, model.OrderStatusDelivered, "left at door")
	require.NoError(t, err)
	require.NotNil(t, order.ActualDelivery)
	assert.Equal(t, pickupAt, *order.ActualPickup, "actual pickup must never change once set")
	assert.Contains(t, order.Notes, "left at door")

	// Terminal: nothing more is allowed, including cancellation.
	_, err = svc.UpdateStatus(context.Background(), businessID, order.ID, model.OrderStatusCancelled, "")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "delivered")
	assert.Contains(t, err.Error(), "cancelled")

	// assign + picked_up + in_transit + delivered = 4 status changes.
	assert.Len(t, publisher.byType(broadcast.EventOrderStatusChanged), 4)
}

func TestUpdateStatus_IllegalTransitions(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	businessID := uuid.New()

	cases := []struct {
		name string
		from model.OrderStatus
		to   model.OrderStatus
	}{
		{"pending to delivered", model.OrderStatusPending, model.OrderStatusDelivered},
		{"pending to picked_up", model.OrderStatusPending, model.OrderStatusPickedUp},
		{"pending to in_transit", model.OrderStatusPending, model.OrderStatusInTransit},
		{"assigned to delivered", model.OrderStatusAssigned, model.OrderStatusDelivered},
		{"assigned to in_transit", model.OrderStatusAssigned, model.OrderStatusInTransit},
		{"picked_up to delivered", model.OrderStatusPickedUp, model.OrderStatusDelivered},
		{"picked_up to assigned", model.OrderStatusPickedUp, model.OrderStatusAssigned},
		{"in_transit to picked_up", model.OrderStatusInTransit, model.OrderStatusPickedUp},
		{"delivered to cancelled", model.OrderStatusDelivered, model.OrderStatusCancelled},
		{"cancelled to assigned", model.OrderStatusCancelled, model.OrderStatusAssigned},
		{"cancelled to pending", model.OrderStatusCancelled, model.OrderStatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := createOrder(t, svc, businessID)
			order.Status = tc.from
			require.NoError(t, svc.orderStore.Update(context.Background(), order))

			_, err := svc.UpdateStatus(context.Background(), businessID, order.ID, tc.to, "")
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), string(tc.from))
			assert.Contains(t, err.Error(), string(tc.to))
		})
	}
}

func TestUpdateStatus_UnknownStatusAndOrder(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)

	_, err := svc.UpdateStatus(context.Background(), businessID, order.ID, "teleported", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateStatus(context.Background(), businessID, uuid.New(), model.OrderStatusAssigned, "")
	assert.ErrorIs(t, err, ErrNotFound)

	// Order exists but belongs to another business.
	_, err = svc.UpdateStatus(context.Background(), uuid.New(), order.ID, model.OrderStatusAssigned, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignDriver(t *testing.T) {
	svc, _, driverStore, _ := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)
	driver := createDriver(t, driverStore, businessID)

	assigned, err := svc.AssignDriver(context.Background(), businessID, order.ID, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusAssigned, assigned.Status)
	require.NotNil(t, assigned.DriverID)
	assert.Equal(t, driver.ID, *assigned.DriverID)

	// Reassignment while still assigned is fine.
	other := createDriver(t, driverStore, businessID)
	reassigned, err := svc.AssignDriver(context.Background(), businessID, order.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, *reassigned.DriverID)
}

func TestAssignDriver_NoRewindAfterPickup(t *testing.T) {
	svc, orderStore, driverStore, _ := newOrderFixture(t)
	businessID := uuid.New()
	driver := createDriver(t, driverStore, businessID)

	for _, status := range []model.OrderStatus{
		model.OrderStatusPickedUp,
		model.OrderStatusInTransit,
		model.OrderStatusDelivered,
		model.OrderStatusCancelled,
	} {
		order := createOrder(t, svc, businessID)
		order.Status = status
		require.NoError(t, orderStore.Update(context.Background(), order))

		_, err := svc.AssignDriver(context.Background(), businessID, order.ID, driver.ID)
		assert.ErrorIs(t, err, ErrInvalidInput, "assignment must be rejected in status %s", status)
	}
}

func TestAssignDriver_NotFound(t *testing.T) {
	svc, _, driverStore, _ := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)
	driver := createDriver(t, driverStore, businessID)

	_, err := svc.AssignDriver(context.Background(), businessID, uuid.New(), driver.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AssignDriver(context.Background(), businessID, order.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// Driver from another business is invisible.
	foreign := createDriver(t, driverStore, uuid.New())
	_, err = svc.AssignDriver(context.Background(), businessID, order.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelOrder(t *testing.T) {
	svc, _, _, publisher := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)

	cancelled, err := svc.Cancel(context.Background(), businessID, order.ID, "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "customer changed mind")

	// Cancelling again is a no-op, not an error.
	changes := len(publisher.byType(broadcast.EventOrderStatusChanged))
	again, err := svc.Cancel(context.Background(), businessID, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, again.Status)
	assert.Len(t, publisher.byType(broadcast.EventOrderStatusChanged), changes)

	// Any further lifecycle move fails.
	_, err = svc.UpdateStatus(context.Background(), businessID, order.ID, model.OrderStatusAssigned, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelOrder_DeliveredIsFinal(t *testing.T) {
	svc, orderStore, _, _ := newOrderFixture(t)
	businessID := uuid.New()
	order := createOrder(t, svc, businessID)
	order.Status = model.OrderStatusDelivered
	require.NoError(t, orderStore.Update(context.Background(), order))

	_, err := svc.Cancel(context.Background(), businessID, order.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, _, _ := newOrderFixture(t)
	businessID := uuid.New()

	_, err := svc.Create(context.Background(), businessID, CreateOrderInput{
		PickupLatitude: 91, PickupLongitude: 0, DeliveryLatitude: 0, DeliveryLongitude: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(context.Background(), businessID, CreateOrderInput{
		Priority:       "urgent",
		PickupLatitude: 40, PickupLongitude: -74, DeliveryLatitude: 40, DeliveryLongitude: -73,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	order, err := svc.Create(context.Background(), businessID, CreateOrderInput{
		PickupLatitude: 40, PickupLongitude: -74, DeliveryLatitude: 40, DeliveryLongitude: -73,
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderPriorityNormal, order.Priority)
}

func TestOrderStatusTransitionTable(t *testing.T) {
	assert.True(t, model.OrderStatusPending.CanTransitionTo(model.OrderStatusAssigned))
	assert.True(t, model.OrderStatusPending.CanTransitionTo(model.OrderStatusCancelled))
	assert.False(t, model.OrderStatusPending.CanTransitionTo(model.OrderStatusDelivered))

	assert.True(t, model.OrderStatusDelivered.Terminal())
	assert.True(t, model.OrderStatusCancelled.Terminal())
	for _, s := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusAssigned,
		model.OrderStatusPickedUp, model.OrderStatusInTransit,
	} {
		assert.False(t, s.Terminal())
	}

	for _, next := range []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusAssigned,
		model.OrderStatusPickedUp, model.OrderStatusInTransit,
		model.OrderStatusDelivered, model.OrderStatusCancelled,
	} {
		assert.False(t, model.OrderStatusDelivered.CanTransitionTo(next))
		assert.False(t, model.OrderStatusCancelled.CanTransitionTo(next))
	}

	assert.False(t, model.OrderStatus("teleported").Valid())
	assert.True(t, model.OrderStatusInTransit.Valid())
}
