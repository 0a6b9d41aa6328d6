// File: /controllers/calculator_controller.go
package controllers

import (
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"mycar-api/models"
	"mycar-api/services"
	"mycar-api/utils"
	"net/http"
)

type CalculatorController struct {
	db     *gorm.DB
	garage *services.GarageService
}

func NewCalculatorController(db *gorm.DB, garage *services.GarageService) *CalculatorController {
	return &CalculatorController{
		db:     db,
		garage: garage,
	}
}

// CalculateTripRequest leaves consumption optional when a vehicle is given; the
// vehicle's average consumption is used instead.
type CalculateTripRequest struct {
	VehicleID              *string `json:"vehicle_id"`
	RoadLength             float64 `json:"road_length" binding:"required,gt=0,lte=10000"`
	AverageFuelPrice       float64 `json:"average_fuel_price" binding:"required,gt=0,lte=10"`
	AverageFuelConsumption float64 `json:"average_fuel_consumption" binding:"gte=0,lte=50"`
	OtherCosts             float64 `json:"other_costs" binding:"gte=0"`
}

type SaveCalculationRequest struct {
	CalculateTripRequest
	RouteName string `json:"route_name" binding:"required,max=255"`
}

func (cc *CalculatorController) resolveCost(c *gin.Context, req CalculateTripRequest) (*services.TripCost, bool) {
	var vehicle *models.Vehicle
	if req.VehicleID != nil && req.AverageFuelConsumption == 0 {
		v, err := cc.garage.GetVehicle(c.GetString("user_id"), *req.VehicleID)
		if err != nil {
			utils.SendServiceError(c, err)
			return nil, false
		}
		vehicle = v
	}

	consumption, err := services.ResolveConsumption(req.AverageFuelConsumption, vehicle)
	if err != nil {
		if errors.Is(err, services.ErrNoConsumption) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Average fuel consumption is required"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve consumption"})
		return nil, false
	}
	if msg := utils.CalculatorInputError(req.RoadLength, req.AverageFuelPrice, consumption); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return nil, false
	}

	cost := services.EstimateTripCost(req.RoadLength, req.AverageFuelPrice, consumption, req.OtherCosts)
	return &cost, true
}

func (cc *CalculatorController) CalculateTrip(c *gin.Context) {
	var req CalculateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	cost, ok := cc.resolveCost(c, req)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cost)
}

func (cc *CalculatorController) SaveCalculation(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SaveCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	cost, ok := cc.resolveCost(c, req.CalculateTripRequest)
	if !ok {
		return
	}

	calculation := models.TripCalculation{
		ID:                     uuid.New().String(),
		UserID:                 userID,
		VehicleID:              req.VehicleID,
		RouteName:              req.RouteName,
		RoadLength:             req.RoadLength,
		AverageFuelPrice:       req.AverageFuelPrice,
		AverageFuelConsumption: cost.Consumption,
		OtherCosts:             req.OtherCosts,
		TotalCost:              cost.TotalCost,
	}

	if err := cc.db.Create(&calculation).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save calculation"})
		return
	}

	c.JSON(http.StatusCreated, calculation)
}

func (cc *CalculatorController) GetHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	var calculations []models.TripCalculation
	if err := cc.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(20).Find(&calculations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch calculation history"})
		return
	}

	c.JSON(http.StatusOK, calculations)
}

func (cc *CalculatorController) ClearHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := cc.db.Where("user_id = ?", userID).Delete(&models.TripCalculation{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear calculation history"})
		return
	}

	utils.SendSuccess(c, "Calculation history cleared successfully", nil)
}
