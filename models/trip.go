// File: /models/trip.go
package models

import (
	"time"
)

// TripRecord is one completed recording session. Distance is accumulated by the
// recorder in meters and is not recomputed from Points.
type TripRecord struct {
	ID           string      `json:"id" gorm:"primaryKey;size:191" validate:"required"`
	OwnerID      string      `json:"owner_id" gorm:"not null;size:191;index"`
	Position     int         `json:"-" gorm:"not null;default:0"`
	StartTime    time.Time   `json:"start_time" gorm:"not null"`
	EndTime      time.Time   `json:"end_time" gorm:"not null"`
	Distance     float64     `json:"distance"` // in meters
	VehicleLabel *string     `json:"vehicle_label" gorm:"size:255"`
	Points       []TripPoint `json:"points" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
}

// Duration is the wall-clock length of the trip.
func (t *TripRecord) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

type TripPoint struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	TripID    string    `json:"-" gorm:"not null;size:191;index"`
	Seq       int       `json:"-" gorm:"not null"`
	Latitude  float64   `json:"latitude" gorm:"not null"`
	Longitude float64   `json:"longitude" gorm:"not null"`
	Speed     float64   `json:"speed"` // in m/s
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}
