// File: /services/tank.go
package services

import (
	"math"
	"mycar-api/models"
)

// EffectiveLevelAfter returns the tank fraction right after the refill, or nil
// when the refill did not record it.
func EffectiveLevelAfter(event *models.RefillEvent) *float64 {
	if event.IsFullTank {
		full := 1.0
		return &full
	}
	if event.TankLevelAfterRefill != nil {
		level := *event.TankLevelAfterRefill
		return &level
	}
	return nil
}

// EstimateConsumedLiters estimates the liters burned between two refills.
//
// With a known capacity and a known, non-empty level after the previous refill
// the estimate comes from the drop in tank level. Otherwise, or when the level
// drop is exactly zero, a full refill counts the purchased liters (full-to-full).
// Anything else cannot be estimated and yields 0.
func EstimateConsumedLiters(capacity float64, levelAfterPrevious *float64, levelBeforeCurrent, litersPurchased float64, isFullTankNow bool) float64 {
	var consumed float64

	if capacity > 0 && levelAfterPrevious != nil && *levelAfterPrevious > 0 {
		consumed = math.Max(0, *levelAfterPrevious-levelBeforeCurrent) * capacity
	}

	if consumed == 0 && isFullTankNow {
		consumed = litersPurchased
	}

	return consumed
}

// LevelAfterPurchase computes the level to store as TankLevelAfterRefill for a new
// refill. It returns nil when the user is not tracking tank levels.
func LevelAfterPurchase(capacity, levelBefore, liters float64, isFullTank, tracked bool) *float64 {
	if !tracked {
		return nil
	}

	level := 1.0
	if !isFullTank {
		if capacity > 0 {
			level = clampFraction((capacity*levelBefore + liters) / capacity)
		} else {
			level = 0
		}
	}
	return &level
}

// PricingField names the pricing value the user typed last.
type PricingField string

const (
	PricingFieldLiters PricingField = "liters"
	PricingFieldPrice  PricingField = "price"
	PricingFieldTotal  PricingField = "total"
)

// ReconcilePricing fills in the pricing values derived from the one the user
// edited, rounding the way receipts do (2 decimals, 3 for unit price).
func ReconcilePricing(liters, price, total float64, edited PricingField) (float64, float64, float64) {
	switch edited {
	case PricingFieldLiters:
		if price > 0 {
			total = roundTo(liters*price, 2)
		} else if total > 0 && liters > 0 {
			price = roundTo(total/liters, 3)
		}
	case PricingFieldTotal:
		if liters > 0 {
			price = roundTo(total/liters, 3)
		} else if price > 0 {
			liters = roundTo(total/price, 2)
		}
	case PricingFieldPrice:
		if liters > 0 {
			total = roundTo(liters*price, 2)
		} else if total > 0 && price > 0 {
			liters = roundTo(total/price, 2)
		}
	}
	return liters, price, total
}

func clampFraction(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

func roundTo(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
