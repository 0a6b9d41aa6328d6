// File: /controllers/trip_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"mycar-api/models"
	"mycar-api/services"
	"mycar-api/utils"
	"net/http"
	"time"
)

type TripController struct {
	garage *services.GarageService
}

func NewTripController(garage *services.GarageService) *TripController {
	return &TripController{garage: garage}
}

type TripPointRequest struct {
	Latitude  float64   `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude float64   `json:"longitude" binding:"gte=-180,lte=180"`
	Speed     float64   `json:"speed" binding:"gte=0"` // m/s
	Timestamp time.Time `json:"timestamp" binding:"required"`
}

type SaveTripRequest struct {
	StartTime    time.Time          `json:"start_time" binding:"required"`
	EndTime      time.Time          `json:"end_time" binding:"required,gtefield=StartTime"`
	Distance     float64            `json:"distance" binding:"gte=0"` // meters
	VehicleID    *string            `json:"vehicle_id"`
	VehicleLabel *string            `json:"vehicle_label" binding:"omitempty,max=255"`
	Points       []TripPointRequest `json:"points" binding:"dive"`
}

func (tc *TripController) ListTrips(c *gin.Context) {
	trips, err := tc.garage.ListTrips(c.GetString("user_id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	if trips == nil {
		trips = []models.TripRecord{}
	}
	c.JSON(http.StatusOK, trips)
}

func (tc *TripController) GetTrip(c *gin.Context) {
	trip, err := tc.garage.GetTrip(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) SaveTrip(c *gin.Context) {
	var req SaveTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	points := make([]models.TripPoint, 0, len(req.Points))
	for _, p := range req.Points {
		points = append(points, models.TripPoint{
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
			Speed:     p.Speed,
			Timestamp: p.Timestamp,
		})
	}

	trip, err := tc.garage.SaveTrip(c.GetString("user_id"), services.TripInput{
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Distance:     req.Distance,
		VehicleID:    req.VehicleID,
		VehicleLabel: req.VehicleLabel,
		Points:       points,
	})
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (tc *TripController) DeleteTrip(c *gin.Context) {
	if err := tc.garage.DeleteTrip(c.GetString("user_id"), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Trip deleted successfully", nil)
}

func (tc *TripController) GetTripStats(c *gin.Context) {
	trip, err := tc.garage.GetTrip(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, services.AnalyzeTrip(trip))
}

func (tc *TripController) GetSummary(c *gin.Context) {
	summary, err := tc.garage.TripsSummary(c.GetString("user_id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
