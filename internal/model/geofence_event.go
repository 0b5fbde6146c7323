package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeofenceEventType string

const (
	GeofenceEventEnter GeofenceEventType = "enter"
	GeofenceEventExit  GeofenceEventType = "exit"
)

// GeofenceEvent is append-only. For a fixed (geofence_id, driver_id)
// pair the sequence ordered by occurred_at strictly alternates
// enter/exit; containment state is derived from the latest row, not
// stored anywhere.
type GeofenceEvent struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	GeofenceID uuid.UUID         `gorm:"type:uuid;not null;index:idx_geofence_events_pair" json:"geofence_id"`
	DriverID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_geofence_events_pair" json:"driver_id"`
	OrderID    *uuid.UUID        `gorm:"type:uuid;index" json:"order_id,omitempty"`
	EventType  GeofenceEventType `gorm:"type:geofence_event_type;not null" json:"event_type"`
	Latitude   float64           `gorm:"not null" json:"latitude"`
	Longitude  float64           `gorm:"not null" json:"longitude"`
	OccurredAt time.Time         `gorm:"index;not null" json:"occurred_at"`
	CreatedAt  time.Time         `gorm:"autoCreateTime" json:"created_at"`
}

func (GeofenceEvent) TableName() string {
	return "geofence_events"
}

func (e *GeofenceEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
