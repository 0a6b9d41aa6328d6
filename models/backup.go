package models

import (
	"time"
)

const BundleVersion = "1.0"

// Bundle is the single-file snapshot used for backup and restore.
type Bundle struct {
	Version   string       `json:"version" validate:"required"`
	Timestamp time.Time    `json:"timestamp"`
	Vehicles  []Vehicle    `json:"vehicles" validate:"dive"`
	Trips     []TripRecord `json:"trips" validate:"dive"`
}
