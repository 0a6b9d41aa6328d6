package services

import (
	"mycar-api/models"
)

type FuelSummary struct {
	RefillCount        int      `json:"refill_count"`
	TotalLiters        float64  `json:"total_liters"`
	TotalCost          float64  `json:"total_cost"`
	DrivenDistance     float64  `json:"driven_distance"`
	AverageConsumption float64  `json:"average_consumption"` // L/100 distance units
	CostPerDistance    float64  `json:"cost_per_distance"`
	MinPricePerUnit    float64  `json:"min_price_per_unit"`
	MaxPricePerUnit    float64  `json:"max_price_per_unit"`
	AverageEfficiency  *float64 `json:"average_efficiency"`
	CurrentOdometer    float64  `json:"current_odometer"`
}

// SummarizeFuel aggregates a vehicle's ledger. The oldest refill's liters are left
// out of the consumption figures since no distance was driven on them yet.
func SummarizeFuel(vehicle *models.Vehicle) FuelSummary {
	events := vehicle.RefillEvents
	summary := FuelSummary{
		RefillCount:     len(events),
		CurrentOdometer: vehicle.Odometer,
	}
	if len(events) == 0 {
		return summary
	}

	var (
		effSum   float64
		effCount int
		// liters of every refill except the oldest one
		consumedLiters float64
		consumedCost   float64
	)

	for i, e := range events {
		summary.TotalLiters += e.Liters
		summary.TotalCost += e.TotalCost

		if i < len(events)-1 {
			consumedLiters += e.Liters
			consumedCost += e.TotalCost
		}

		if e.PricePerUnit > 0 {
			if summary.MinPricePerUnit == 0 || e.PricePerUnit < summary.MinPricePerUnit {
				summary.MinPricePerUnit = e.PricePerUnit
			}
			if e.PricePerUnit > summary.MaxPricePerUnit {
				summary.MaxPricePerUnit = e.PricePerUnit
			}
		}

		if e.Efficiency != nil {
			effSum += *e.Efficiency
			effCount++
		}
	}

	summary.DrivenDistance = events[0].Odometer - events[len(events)-1].Odometer
	if summary.DrivenDistance > 0 {
		summary.AverageConsumption = (consumedLiters / summary.DrivenDistance) * 100
		summary.CostPerDistance = consumedCost / summary.DrivenDistance
	}

	if effCount > 0 {
		avg := effSum / float64(effCount)
		summary.AverageEfficiency = &avg
	}
	return summary
}
