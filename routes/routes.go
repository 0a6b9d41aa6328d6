// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"mycar-api/config"
	"mycar-api/controllers"
	"mycar-api/middleware"
	"mycar-api/repositories"
	"mycar-api/services"
	"mycar-api/utils"
)

// Dependencies are the shared services the router is built from.
type Dependencies struct {
	DB           *gorm.DB
	Config       *config.Config
	Garage       *services.GarageService
	Backup       *services.BackupService
	Users        *repositories.UserRepository
	EmailService *services.EmailService
}

// NewDependencies wires repositories and services on top of db.
func NewDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	vehicleRepo := repositories.NewVehicleRepository(db)
	tripRepo := repositories.NewTripRepository(db)
	garage := services.NewGarageService(vehicleRepo, tripRepo)

	return &Dependencies{
		DB:           db,
		Config:       cfg,
		Garage:       garage,
		Backup:       services.NewBackupService(garage, repositories.NewBackupRepository(db), utils.NewValidator()),
		Users:        repositories.NewUserRepository(db),
		EmailService: services.NewEmailService(cfg),
	}
}

func SetupRoutes(r *gin.Engine, deps *Dependencies) {
	cfg := deps.Config

	authController := controllers.NewAuthController(deps.Users, cfg.JWTSecret)
	vehicleController := controllers.NewVehicleController(deps.Garage)
	fuelController := controllers.NewFuelController(deps.Garage)
	tripController := controllers.NewTripController(deps.Garage)
	backupController := controllers.NewBackupController(deps.Backup, deps.Users, deps.EmailService)
	calculatorController := controllers.NewCalculatorController(deps.DB, deps.Garage)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.ValidateJSON())

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authController.Profile)

		vehicles := protected.Group("/vehicles")
		{
			vehicles.GET("", vehicleController.ListVehicles)
			vehicles.POST("", vehicleController.CreateVehicle)
			vehicles.GET("/:id", vehicleController.GetVehicle)
			vehicles.PUT("/:id", vehicleController.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleController.DeleteVehicle)

			vehicles.GET("/:id/refills", fuelController.ListRefills)
			vehicles.POST("/:id/refills", fuelController.AddRefill)
			vehicles.PUT("/:id/refills/:refillId", fuelController.UpdateRefill)
			vehicles.DELETE("/:id/refills/:refillId", fuelController.DeleteRefill)
			vehicles.GET("/:id/fuel-stats", fuelController.GetFuelStats)

			vehicles.GET("/:id/services", vehicleController.ListServiceLogs)
			vehicles.POST("/:id/services", vehicleController.AddServiceLog)
			vehicles.DELETE("/:id/services/:serviceId", vehicleController.DeleteServiceLog)
		}

		trips := protected.Group("/trips")
		{
			trips.GET("", tripController.ListTrips)
			trips.POST("", tripController.SaveTrip)
			trips.GET("/stats", tripController.GetSummary)
			trips.GET("/:id", tripController.GetTrip)
			trips.GET("/:id/stats", tripController.GetTripStats)
			trips.DELETE("/:id", tripController.DeleteTrip)
		}

		backup := protected.Group("/backup")
		{
			backup.GET("/export", backupController.Export)
			backup.POST("/import", backupController.Import)
			backup.POST("/email", backupController.Email)
		}
		protected.DELETE("/data", backupController.Reset)

		calculator := protected.Group("/calculator")
		{
			calculator.POST("/calculate", calculatorController.CalculateTrip)
			calculator.POST("/save", calculatorController.SaveCalculation)
			calculator.GET("/history", calculatorController.GetHistory)
			calculator.DELETE("/history", calculatorController.ClearHistory)
		}
	}
}

// NewRouter builds the engine with the middleware stack used by the server.
func NewRouter(deps *Dependencies) *gin.Engine {
	cfg := deps.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))

	SetupRoutes(r, deps)
	return r
}
