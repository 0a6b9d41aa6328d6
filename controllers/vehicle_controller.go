// File: /controllers/vehicle_controller.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"mycar-api/models"
	"mycar-api/services"
	"mycar-api/utils"
	"net/http"
	"time"
)

type VehicleController struct {
	garage *services.GarageService
}

func NewVehicleController(garage *services.GarageService) *VehicleController {
	return &VehicleController{garage: garage}
}

type VehicleRequest struct {
	Make         string  `json:"make" binding:"required,max=100"`
	Model        string  `json:"model" binding:"required,max=100"`
	Year         string  `json:"year" binding:"omitempty,len=4,numeric"`
	LicensePlate string  `json:"license_plate" binding:"max=20"`
	FuelType     string  `json:"fuel_type" binding:"max=50"`
	TankCapacity float64 `json:"tank_capacity" binding:"gte=0"`
	Horsepower   int     `json:"horsepower" binding:"gte=0"`
	Displacement int     `json:"displacement" binding:"gte=0"`
	Odometer     float64 `json:"odometer" binding:"gte=0"`
}

type ServiceLogRequest struct {
	Date     *time.Time `json:"date"`
	Type     string     `json:"type" binding:"required,max=100"`
	Cost     float64    `json:"cost" binding:"gte=0"`
	Odometer float64    `json:"odometer" binding:"gte=0"`
	Notes    string     `json:"notes"`
}

func (req VehicleRequest) toInput() services.VehicleInput {
	return services.VehicleInput{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		FuelType:     req.FuelType,
		TankCapacity: req.TankCapacity,
		Horsepower:   req.Horsepower,
		Displacement: req.Displacement,
		Odometer:     req.Odometer,
	}
}

func (vc *VehicleController) ListVehicles(c *gin.Context) {
	vehicles, err := vc.garage.ListVehicles(c.GetString("user_id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	c.JSON(http.StatusOK, vehicles)
}

func (vc *VehicleController) GetVehicle(c *gin.Context) {
	vehicle, err := vc.garage.GetVehicle(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (vc *VehicleController) CreateVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	vehicle, err := vc.garage.CreateVehicle(c.GetString("user_id"), req.toInput())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

func (vc *VehicleController) UpdateVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	vehicle, err := vc.garage.UpdateVehicle(c.GetString("user_id"), c.Param("id"), req.toInput())
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (vc *VehicleController) DeleteVehicle(c *gin.Context) {
	if err := vc.garage.DeleteVehicle(c.GetString("user_id"), c.Param("id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Vehicle deleted successfully", nil)
}

// Service records

func (vc *VehicleController) ListServiceLogs(c *gin.Context) {
	vehicle, err := vc.garage.GetVehicle(c.GetString("user_id"), c.Param("id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	logs := vehicle.ServiceLogs
	if logs == nil {
		logs = []models.ServiceLog{}
	}
	c.JSON(http.StatusOK, logs)
}

func (vc *VehicleController) AddServiceLog(c *gin.Context) {
	var req ServiceLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err)
		return
	}

	log := models.ServiceLog{
		Type:     req.Type,
		Cost:     req.Cost,
		Odometer: req.Odometer,
		Notes:    req.Notes,
	}
	if req.Date != nil {
		log.Date = *req.Date
	}

	created, err := vc.garage.AddServiceLog(c.GetString("user_id"), c.Param("id"), log)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (vc *VehicleController) DeleteServiceLog(c *gin.Context) {
	err := vc.garage.DeleteServiceLog(c.GetString("user_id"), c.Param("id"), c.Param("serviceId"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "Service record deleted successfully", nil)
}
