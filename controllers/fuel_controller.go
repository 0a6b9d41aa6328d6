// File: /controllers/fuel_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"mycar-api/models"
	"mycar-api/services"
	"mycar-api/utils"
	"net/http"
	"time"
)

type FuelController struct {
	garage *services.GarageService
}

func NewFuelController(garage *services.GarageService) *FuelController {
	return &FuelController{garage: garage}
}

// RefillRequest is a refill as entered by the user. Two of liters, price and total
// are enough; the third is derived. Zero or negative quantities are stored as
// given and leave the derived efficiency unset. A present tank_level_before_refill
// turns on tank level tracking for this refill.
type RefillRequest struct {
	Date                  *time.Time `json:"date"`
	OdometerMode          string     `json:"odometer_mode" binding:"omitempty,oneof=absolute distance"`
	Odometer              float64    `json:"odometer"`
	Liters                *float64   `json:"liters"`
	PricePerUnit          *float64   `json:"price_per_unit"`
	TotalCost             *float64   `json:"total_cost"`
	FuelType              string     `json:"fuel_type" binding:"max=50"`
	TankLevelBeforeRefill *float64   `json:"tank_level_before_refill" binding:"omitempty,fraction"`
	TankLevelAfterRefill  *float64   `json:"tank_level_after_refill" binding:"omitempty,fraction"`
	IsFullTank            bool       `json:"is_full_tank"`
	StationName           *string    `json:"station_name" binding:"omitempty,max=255"`
}

func (req RefillRequest) toInput() services.RefillInput {
	input := services.RefillInput{
		OdometerMode:         req.OdometerMode,
		Odometer:             req.Odometer,
		FuelType:             req.FuelType,
		TankLevelAfterRefill: req.TankLevelAfterRefill,
		IsFullTank:           req.IsFullTank,
		StationName:          req.StationName,
	}
	if input.OdometerMode == "" {
		input.OdometerMode = services.OdometerModeAbsolute
	}
	if req.Liters != nil {
		input.Liters = *req.Liters
	}
	if req.PricePerUnit != nil {
		input.PricePerUnit = *req.PricePerUnit
	}
	if req.TotalCost != nil {
		input.TotalCost = *req.TotalCost
	}
	if req.Date != nil {
		input.Date = *req.Date
	}
	if req.TankLevelBeforeRefill != nil {
		input.TankLevelBeforeRefill = *req.TankLevelBeforeRefill
		input.TrackTankLevel = true
	}
	return input
}

// hasPricing reports whether at least two pricing values were given.
func (req RefillRequest) hasPricing() bool {
	given := 0
	for _, v := range []*float64{req.Liters, req.PricePerUnit, req.TotalCost} {
		if v != nil {
			given++
		}
	}
	return given >= 2
}

func (fc *FuelController) bindRefill(c *gin.Context) (*RefillRequest, bool) {
	var req RefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return nil, false
	}
	if !req.hasPricing() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide at least two of liters, price_per_unit and total_cost"})
		return nil, false
	}
	return &req, true
}

func (fc *FuelController) ListRefills(c *gin.Context) {
	vehicle, err := fc.garage.GetVehicle(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	events := vehicle.RefillEvents
	if events == nil {
		events = []models.RefillEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (fc *FuelController) AddRefill(c *gin.Context) {
	req, ok := fc.bindRefill(c)
	if !ok {
		return
	}

	event, err := fc.garage.AddRefill(c.GetString("user_id"), c.Param("id"), req.toInput())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (fc *FuelController) UpdateRefill(c *gin.Context) {
	req, ok := fc.bindRefill(c)
	if !ok {
		return
	}

	event, err := fc.garage.UpdateRefill(c.GetString("user_id"), c.Param("id"), c.Param("refillId"), req.toInput())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (fc *FuelController) DeleteRefill(c *gin.Context) {
	if err := fc.garage.DeleteRefill(c.GetString("user_id"), c.Param("id"), c.Param("refillId")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Refill deleted successfully", nil)
}

func (fc *FuelController) GetFuelStats(c *gin.Context) {
	summary, err := fc.garage.FuelSummary(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
