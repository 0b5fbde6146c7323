package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PositionObservation is append-only: rows are inserted on every
// location report and never updated or deleted.
type PositionObservation struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	DriverID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"driver_id"`
	OrderID    *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Latitude   float64    `gorm:"not null" json:"latitude"`
	Longitude  float64    `gorm:"not null" json:"longitude"`
	Accuracy   *float64   `json:"accuracy,omitempty"`
	Speed      *float64   `json:"speed,omitempty"`
	Heading    *float64   `json:"heading,omitempty"`
	ObservedAt time.Time  `gorm:"index;not null" json:"observed_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (PositionObservation) TableName() string {
	return "position_observations"
}

func (p *PositionObservation) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// DriverLocation is the single-row-per-driver snapshot of the most
// recent observation, keyed by observed_at (an older observation never
// overwrites a newer snapshot).
type DriverLocation struct {
	DriverID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"driver_id"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"`
	Speed      *float64  `json:"speed,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	ObservedAt time.Time `gorm:"not null" json:"observed_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DriverLocation) TableName() string {
	return "driver_locations"
}
