// File: /models/vehicle.go
package models

import (
	"time"
)

// Vehicle owns a fuel ledger. Odometer follows the most recent refill.
type Vehicle struct {
	ID           string    `json:"id" gorm:"primaryKey;size:191" validate:"required"`
	OwnerID      string    `json:"owner_id" gorm:"not null;size:191;index"`
	Make         string    `json:"make" gorm:"not null;size:100"`
	Model        string    `json:"model" gorm:"not null;size:100"`
	Year         string    `json:"year" gorm:"size:4"`
	LicensePlate string    `json:"license_plate" gorm:"size:20"`
	FuelType     string    `json:"fuel_type" gorm:"size:50"`
	TankCapacity float64   `json:"tank_capacity"` // liters, 0 when unknown
	Horsepower   int       `json:"horsepower"`
	Displacement int       `json:"displacement"` // cc
	Odometer     float64   `json:"odometer"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	RefillEvents []RefillEvent `json:"refill_events" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE" validate:"dive"`
	ServiceLogs  []ServiceLog  `json:"service_logs" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

// DisplayName is used as the label stored on trips recorded with this vehicle.
func (v *Vehicle) DisplayName() string {
	return v.Make + " " + v.Model
}
