// File: /database/database.go
package database

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"mycar-api/models"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Initialize opens the database for the given driver. An empty driver means sqlite.
func Initialize(driver, databaseURL string, production bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(databaseURL)
	case DriverSQLite, "":
		dialector = sqlite.Open(databaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := logger.Info
	if production {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.RefillEvent{},
		&models.ServiceLog{},
		&models.TripRecord{},
		&models.TripPoint{},
		&models.TripCalculation{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	addCustomIndexes(db)
	return nil
}

func addCustomIndexes(db *gorm.DB) {
	indexes := map[string]string{
		"idx_refill_events_vehicle_position": "CREATE INDEX IF NOT EXISTS idx_refill_events_vehicle_position ON refill_events(vehicle_id, position)",
		"idx_trip_records_owner_position":    "CREATE INDEX IF NOT EXISTS idx_trip_records_owner_position ON trip_records(owner_id, position)",
		"idx_trip_points_trip_seq":           "CREATE INDEX IF NOT EXISTS idx_trip_points_trip_seq ON trip_points(trip_id, seq)",
	}

	// MySQL has no IF NOT EXISTS for indexes; failures only mean the index is already there.
	for name, statement := range indexes {
		if err := db.Exec(statement).Error; err != nil {
			logrus.WithField("index", name).Warnf("Could not create index: %v", err)
		}
	}
}
