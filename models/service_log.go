package models

import (
	"time"
)

type ServiceLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	VehicleID string    `json:"vehicle_id" gorm:"not null;size:191;index"`
	Date      time.Time `json:"date" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null;size:100"` // oil, tyres, inspection...
	Cost      float64   `json:"cost"`
	Odometer  float64   `json:"odometer"`
	Notes     string    `json:"notes" gorm:"type:text"`
}
