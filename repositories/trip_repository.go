package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"mycar-api/models"
)

type TripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) *TripRepository {
	return &TripRepository{db: db}
}

// LoadTrips returns the owner's trips in stored order with their points.
func (r *TripRepository) LoadTrips(ownerID string) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	err := r.db.
		Preload("Points", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("owner_id = ?", ownerID).
		Order("position ASC").
		Find(&trips).Error
	return trips, err
}

// SaveTrips replaces every stored trip of the owner with trips.
func (r *TripRepository) SaveTrips(ownerID string, trips []models.TripRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return replaceTrips(tx, ownerID, trips)
	})
}

func replaceTrips(tx *gorm.DB, ownerID string, trips []models.TripRecord) error {
	if err := deleteTrips(tx, ownerID); err != nil {
		return err
	}
	return insertTrips(tx, ownerID, trips)
}

func deleteTrips(tx *gorm.DB, ownerID string) error {
	subQuery := tx.Model(&models.TripRecord{}).Select("id").Where("owner_id = ?", ownerID)
	if err := tx.Where("trip_id IN (?)", subQuery).Delete(&models.TripPoint{}).Error; err != nil {
		return err
	}
	return tx.Where("owner_id = ?", ownerID).Delete(&models.TripRecord{}).Error
}

// insertTrips stores trips in list order along with their points.
func insertTrips(tx *gorm.DB, ownerID string, trips []models.TripRecord) error {
	for i := range trips {
		trip := trips[i]
		trip.OwnerID = ownerID
		trip.Position = i
		if err := tx.Omit(clause.Associations).Create(&trip).Error; err != nil {
			return err
		}

		if len(trip.Points) == 0 {
			continue
		}
		points := make([]models.TripPoint, len(trip.Points))
		for j, p := range trip.Points {
			p.ID = 0
			p.TripID = trip.ID
			p.Seq = j
			points[j] = p
		}
		if err := tx.CreateInBatches(points, 500).Error; err != nil {
			return err
		}
	}
	return nil
}
