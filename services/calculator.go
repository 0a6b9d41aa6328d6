package services

import (
	"errors"
	"mycar-api/models"
)

var ErrNoConsumption = errors.New("no fuel consumption given and the vehicle has no consumption history")

type TripCost struct {
	FuelNeededLiters float64 `json:"fuel_needed_liters"`
	FuelCost         float64 `json:"fuel_cost"`
	OtherCosts       float64 `json:"other_costs"`
	TotalCost        float64 `json:"total_cost"`
	CostPerKm        float64 `json:"cost_per_km"`
	Consumption      float64 `json:"consumption"` // L/100km actually used
}

// EstimateTripCost prices a trip of roadLength km at the given consumption (L/100km).
func EstimateTripCost(roadLength, fuelPrice, consumption, otherCosts float64) TripCost {
	fuelNeeded := (roadLength * consumption) / 100
	fuelCost := fuelNeeded * fuelPrice
	totalCost := fuelCost + otherCosts

	cost := TripCost{
		FuelNeededLiters: roundTo(fuelNeeded, 2),
		FuelCost:         roundTo(fuelCost, 2),
		OtherCosts:       otherCosts,
		TotalCost:        roundTo(totalCost, 2),
		Consumption:      consumption,
	}
	if roadLength > 0 {
		cost.CostPerKm = roundTo(totalCost/roadLength, 3)
	}
	return cost
}

// ResolveConsumption prefers an explicit consumption and falls back to the
// vehicle's average from its fuel ledger.
func ResolveConsumption(consumption float64, vehicle *models.Vehicle) (float64, error) {
	if consumption > 0 {
		return consumption, nil
	}
	if vehicle != nil {
		if avg := SummarizeFuel(vehicle).AverageConsumption; avg > 0 {
			return roundTo(avg, 2), nil
		}
	}
	return 0, ErrNoConsumption
}
