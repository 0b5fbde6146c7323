package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GeofenceType string

const (
	GeofenceTypePickup     GeofenceType = "pickup"
	GeofenceTypeDelivery   GeofenceType = "delivery"
	GeofenceTypeRestricted GeofenceType = "restricted"
	GeofenceTypeCustom     GeofenceType = "custom"
)

func (t GeofenceType) Valid() bool {
	switch t {
	case GeofenceTypePickup, GeofenceTypeDelivery, GeofenceTypeRestricted, GeofenceTypeCustom:
		return true
	}
	return false
}

// Geofence is a circular boundary around a center point. RadiusMeters
// must be positive; the boundary itself counts as inside.
type Geofence struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	BusinessID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"business_id"`
	Name            string       `gorm:"type:varchar(255);not null" json:"name"`
	Type            GeofenceType `gorm:"type:geofence_type;not null;default:custom" json:"type"`
	CenterLatitude  float64      `gorm:"not null" json:"center_latitude"`
	CenterLongitude float64      `gorm:"not null" json:"center_longitude"`
	RadiusMeters    float64      `gorm:"not null" json:"radius_meters"`
	Active          bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Geofence) TableName() string {
	return "geofences"
}

func (g *Geofence) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
