package repositories

import (
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mycar-api/models"
)

var ErrNotFound = errors.New("record not found")

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// ListVehicles returns the owner's vehicles without their ledgers.
func (r *VehicleRepository) ListVehicles(ownerID string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&vehicles).Error
	return vehicles, err
}

// GetVehicle loads a vehicle with its refill events (newest first) and service logs.
func (r *VehicleRepository) GetVehicle(ownerID, vehicleID string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.
		Preload("RefillEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ServiceLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("date DESC")
		}).
		Where("id = ? AND owner_id = ?", vehicleID, ownerID).
		First(&vehicle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) CreateVehicle(vehicle *models.Vehicle) error {
	return r.db.Omit(clause.Associations).Create(vehicle).Error
}

// UpdateVehicle saves the vehicle's own columns; the ledger is saved separately.
func (r *VehicleRepository) UpdateVehicle(vehicle *models.Vehicle) error {
	return r.db.Model(&models.Vehicle{ID: vehicle.ID}).Updates(map[string]interface{}{
		"make":          vehicle.Make,
		"model":         vehicle.Model,
		"year":          vehicle.Year,
		"license_plate": vehicle.LicensePlate,
		"fuel_type":     vehicle.FuelType,
		"tank_capacity": vehicle.TankCapacity,
		"horsepower":    vehicle.Horsepower,
		"displacement":  vehicle.Displacement,
		"odometer":      vehicle.Odometer,
	}).Error
}

func (r *VehicleRepository) DeleteVehicle(ownerID, vehicleID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND owner_id = ?", vehicleID, ownerID).Delete(&models.Vehicle{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&models.RefillEvent{}).Error; err != nil {
			return err
		}
		return tx.Where("vehicle_id = ?", vehicleID).Delete(&models.ServiceLog{}).Error
	})
}

// LoadRefillEvents returns the stored ledger, newest first.
func (r *VehicleRepository) LoadRefillEvents(vehicleID string) ([]models.RefillEvent, error) {
	var events []models.RefillEvent
	err := r.db.Where("vehicle_id = ?", vehicleID).Order("position ASC").Find(&events).Error
	return events, err
}

// SaveRefillEvents replaces the stored ledger of a vehicle with events.
func (r *VehicleRepository) SaveRefillEvents(vehicleID string, events []models.RefillEvent) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return replaceRefillEvents(tx, vehicleID, events)
	})
}

// SaveLedger persists the vehicle odometer together with its whole ledger.
func (r *VehicleRepository) SaveLedger(vehicle *models.Vehicle) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Vehicle{ID: vehicle.ID}).Update("odometer", vehicle.Odometer).Error; err != nil {
			return err
		}
		return replaceRefillEvents(tx, vehicle.ID, vehicle.RefillEvents)
	})
}

func (r *VehicleRepository) CreateServiceLog(log *models.ServiceLog) error {
	return r.db.Create(log).Error
}

func (r *VehicleRepository) DeleteServiceLog(vehicleID, serviceLogID string) error {
	result := r.db.Where("id = ? AND vehicle_id = ?", serviceLogID, vehicleID).Delete(&models.ServiceLog{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func replaceRefillEvents(tx *gorm.DB, vehicleID string, events []models.RefillEvent) error {
	if err := tx.Where("vehicle_id = ?", vehicleID).Delete(&models.RefillEvent{}).Error; err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	rows := make([]models.RefillEvent, len(events))
	for i, e := range events {
		e.VehicleID = vehicleID
		e.Position = i
		rows[i] = e
	}
	return tx.CreateInBatches(rows, 100).Error
}
