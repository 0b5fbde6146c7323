package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusAssigned  OrderStatus = "assigned"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the closed set of legal lifecycle moves.
// Terminal statuses have no outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusAssigned, OrderStatusCancelled},
	OrderStatusAssigned:  {OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusPickedUp:  {OrderStatusInTransit, OrderStatusCancelled},
	OrderStatusInTransit: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityNormal OrderPriority = "normal"
	OrderPriorityHigh   OrderPriority = "high"
)

func (p OrderPriority) Valid() bool {
	switch p {
	case OrderPriorityLow, OrderPriorityNormal, OrderPriorityHigh:
		return true
	}
	return false
}

type Order struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BusinessID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"business_id"`
	DriverID          *uuid.UUID    `gorm:"type:uuid;index" json:"driver_id,omitempty"`
	Status            OrderStatus   `gorm:"type:order_status;not null;default:pending" json:"status"`
	Priority          OrderPriority `gorm:"type:varchar(16);not null;default:normal" json:"priority"`
	PickupLatitude    float64       `gorm:"not null" json:"pickup_latitude"`
	PickupLongitude   float64       `gorm:"not null" json:"pickup_longitude"`
	DeliveryLatitude  float64       `gorm:"not null" json:"delivery_latitude"`
	DeliveryLongitude float64       `gorm:"not null" json:"delivery_longitude"`
	EstimatedDelivery *time.Time    `json:"estimated_delivery,omitempty"`
	ActualPickup      *time.Time    `json:"actual_pickup,omitempty"`
	ActualDelivery    *time.Time    `json:"actual_delivery,omitempty"`
	Notes             string        `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
