// File: /services/fuel_ledger.go
package services

import (
	"errors"
	"mycar-api/models"
)

var (
	ErrRefillIndexOutOfRange = errors.New("refill index out of range")
	ErrNoDistanceAnchor      = errors.New("refill has no previous refill to measure distance from")
)

// The ledger functions below mutate a vehicle's refill list in place. The list is
// newest first and every mutation only recomputes the touched refill and its
// direct neighbors. Callers serialize access per vehicle.

// InsertRefill records a new most-recent refill.
func InsertRefill(vehicle *models.Vehicle, event models.RefillEvent) {
	event.DistanceSinceLast = nil
	event.Efficiency = nil

	if len(vehicle.RefillEvents) > 0 {
		closeInterval(vehicle.TankCapacity, &vehicle.RefillEvents[0], &event)
	}

	vehicle.RefillEvents = append([]models.RefillEvent{event}, vehicle.RefillEvents...)

	if event.Odometer > vehicle.Odometer {
		vehicle.Odometer = event.Odometer
	}
}

// UpdateRefill replaces the refill at index and recomputes both of its intervals.
func UpdateRefill(vehicle *models.Vehicle, event models.RefillEvent, index int) error {
	events := vehicle.RefillEvents
	if index < 0 || index >= len(events) {
		return ErrRefillIndexOutOfRange
	}

	event.DistanceSinceLast = nil
	event.Efficiency = nil

	// Interval ending at the edited refill, stamped on the older neighbor.
	if index+1 < len(events) {
		closeInterval(vehicle.TankCapacity, &events[index+1], &event)
	}

	// Interval starting at the edited refill, closed by the newer neighbor.
	if index > 0 {
		closeInterval(vehicle.TankCapacity, &event, &events[index-1])
	}

	events[index] = event

	if index == 0 {
		vehicle.Odometer = event.Odometer
	}
	return nil
}

// DeleteRefill removes the refill at index. Removing the head clears the new
// head's efficiency because the refill that closed its interval is gone. The gap
// left by a historical delete is not bridged.
func DeleteRefill(vehicle *models.Vehicle, index int) error {
	if index < 0 || index >= len(vehicle.RefillEvents) {
		return ErrRefillIndexOutOfRange
	}

	vehicle.RefillEvents = append(vehicle.RefillEvents[:index], vehicle.RefillEvents[index+1:]...)

	if index == 0 && len(vehicle.RefillEvents) > 0 {
		head := &vehicle.RefillEvents[0]
		head.Efficiency = nil
		vehicle.Odometer = head.Odometer
	}
	return nil
}

// RefillIndex returns the ledger position of the refill with the given ID, or -1.
func RefillIndex(vehicle *models.Vehicle, refillID string) int {
	for i := range vehicle.RefillEvents {
		if vehicle.RefillEvents[i].ID == refillID {
			return i
		}
	}
	return -1
}

// ResolveInsertOdometer turns a "distance since last refill" entry into an
// absolute odometer for a new refill.
func ResolveInsertOdometer(vehicle *models.Vehicle, distance float64) float64 {
	return vehicle.Odometer + distance
}

// ResolveEditOdometer turns a "distance since last refill" entry into an absolute
// odometer for an existing refill. The base is the previous refill's odometer as
// recorded on the edited refill, so repeated edits do not drift.
func ResolveEditOdometer(edited *models.RefillEvent, distance float64) (float64, error) {
	if edited.DistanceSinceLast == nil {
		return 0, ErrNoDistanceAnchor
	}
	prior := edited.Odometer - *edited.DistanceSinceLast
	return prior + distance, nil
}

// closeInterval sets newer.DistanceSinceLast and stamps (or clears) the
// efficiency of older for the interval between them.
func closeInterval(capacity float64, older, newer *models.RefillEvent) {
	distance := newer.Odometer - older.Odometer
	newer.DistanceSinceLast = &distance

	consumed := EstimateConsumedLiters(
		capacity,
		EffectiveLevelAfter(older),
		newer.TankLevelBeforeRefill,
		newer.Liters,
		newer.IsFullTank,
	)

	if distance > 0 && consumed > 0 {
		efficiency := (consumed / distance) * 100
		older.Efficiency = &efficiency
		return
	}
	older.Efficiency = nil
}
