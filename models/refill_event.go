// File: /models/refill_event.go
package models

import (
	"time"
)

// RefillEvent is one fuel purchase. Vehicles keep them newest first: index 0 is
// the most recent refill, index+1 the previous (older) one.
//
// DistanceSinceLast and Efficiency are owned by the fuel ledger. Efficiency is
// liters per 100 distance units for the interval that starts at this refill and
// is stamped once the next refill arrives.
type RefillEvent struct {
	ID                    string    `json:"id" gorm:"primaryKey;size:191" validate:"required"`
	VehicleID             string    `json:"vehicle_id" gorm:"not null;size:191;index"`
	Position              int       `json:"-" gorm:"not null;default:0"`
	Date                  time.Time `json:"date" gorm:"not null"`
	Odometer              float64   `json:"odometer"`
	Liters                float64   `json:"liters"`
	PricePerUnit          float64   `json:"price_per_unit"`
	TotalCost             float64   `json:"total_cost"`
	FuelType              string    `json:"fuel_type" gorm:"size:50"`
	TankLevelBeforeRefill float64   `json:"tank_level_before_refill" validate:"fraction"`
	TankLevelAfterRefill  *float64  `json:"tank_level_after_refill" validate:"omitempty,fraction"`
	IsFullTank            bool      `json:"is_full_tank" gorm:"default:false"`
	DistanceSinceLast     *float64  `json:"distance_since_last"`
	Efficiency            *float64  `json:"efficiency"`
	StationName           *string   `json:"station_name" gorm:"size:255"`
}
