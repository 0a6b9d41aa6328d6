package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mycar-api/models"
)

type BackupRepository struct {
	db *gorm.DB
}

func NewBackupRepository(db *gorm.DB) *BackupRepository {
	return &BackupRepository{db: db}
}

// ReplaceAll swaps the owner's vehicles (with ledgers and service logs) and trips
// for the given collections in a single transaction. Rows keep their IDs unless
// another account already stores that ID, in which case they get a fresh one.
func (r *BackupRepository) ReplaceAll(ownerID string, vehicles []models.Vehicle, trips []models.TripRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteVehicles(tx, ownerID); err != nil {
			return err
		}
		if err := deleteTrips(tx, ownerID); err != nil {
			return err
		}

		keys := newImportKeys(tx)
		for i := range vehicles {
			vehicle := vehicles[i]
			vehicle.OwnerID = ownerID
			id, err := keys.resolve(&models.Vehicle{}, "vehicles", vehicle.ID)
			if err != nil {
				return err
			}
			vehicle.ID = id
			if err := tx.Omit(clause.Associations).Create(&vehicle).Error; err != nil {
				return err
			}

			events := make([]models.RefillEvent, len(vehicle.RefillEvents))
			for j, e := range vehicle.RefillEvents {
				if e.ID, err = keys.resolve(&models.RefillEvent{}, "refill_events", e.ID); err != nil {
					return err
				}
				events[j] = e
			}
			if err := replaceRefillEvents(tx, vehicle.ID, events); err != nil {
				return err
			}

			for _, log := range vehicle.ServiceLogs {
				if log.ID, err = keys.resolve(&models.ServiceLog{}, "service_logs", log.ID); err != nil {
					return err
				}
				log.VehicleID = vehicle.ID
				if err := tx.Create(&log).Error; err != nil {
					return err
				}
			}
		}

		rekeyed := make([]models.TripRecord, len(trips))
		for i, trip := range trips {
			id, err := keys.resolve(&models.TripRecord{}, "trip_records", trip.ID)
			if err != nil {
				return err
			}
			trip.ID = id
			rekeyed[i] = trip
		}
		return insertTrips(tx, ownerID, rekeyed)
	})
}

// importKeys tracks the IDs written by one import. An ID is kept when no row
// has it yet or when this import wrote it, so duplicates inside a bundle still
// fail the insert.
type importKeys struct {
	tx      *gorm.DB
	written map[string]bool
}

func newImportKeys(tx *gorm.DB) *importKeys {
	return &importKeys{tx: tx, written: make(map[string]bool)}
}

func (k *importKeys) resolve(model interface{}, table, id string) (string, error) {
	if id != "" {
		if k.written[table+"/"+id] {
			return id, nil
		}
		var count int64
		if err := k.tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			k.written[table+"/"+id] = true
			return id, nil
		}
	}

	id = uuid.New().String()
	k.written[table+"/"+id] = true
	return id, nil
}

func deleteVehicles(tx *gorm.DB, ownerID string) error {
	subQuery := tx.Model(&models.Vehicle{}).Select("id").Where("owner_id = ?", ownerID)
	if err := tx.Where("vehicle_id IN (?)", subQuery).Delete(&models.RefillEvent{}).Error; err != nil {
		return err
	}
	if err := tx.Where("vehicle_id IN (?)", subQuery).Delete(&models.ServiceLog{}).Error; err != nil {
		return err
	}
	return tx.Where("owner_id = ?", ownerID).Delete(&models.Vehicle{}).Error
}
