package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"mycar-api/models"
	"mycar-api/utils"
	"time"
)

var ErrInvalidBundle = errors.New("invalid backup bundle")

// BundleStore swaps an owner's vehicles and trips in one transaction.
type BundleStore interface {
	ReplaceAll(ownerID string, vehicles []models.Vehicle, trips []models.TripRecord) error
}

type BackupService struct {
	garage   *GarageService
	store    BundleStore
	validate *validator.Validate
}

func NewBackupService(garage *GarageService, store BundleStore, validate *validator.Validate) *BackupService {
	return &BackupService{
		garage:   garage,
		store:    store,
		validate: validate,
	}
}

// BackupFileName names a bundle file the way exported backups are named.
func BackupFileName(at time.Time) string {
	return fmt.Sprintf("MyCar_Backup_%s.json", at.Format("2006-01-02"))
}

// Export snapshots every vehicle (with ledger and service logs) and trip of the owner.
func (s *BackupService) Export(ownerID string) (*models.Bundle, error) {
	list, err := s.garage.ListVehicles(ownerID)
	if err != nil {
		return nil, err
	}

	vehicles := make([]models.Vehicle, 0, len(list))
	for _, v := range list {
		vehicle, err := s.garage.GetVehicle(ownerID, v.ID)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *vehicle)
	}

	trips, err := s.garage.ListTrips(ownerID)
	if err != nil {
		return nil, err
	}

	return &models.Bundle{
		Version:   models.BundleVersion,
		Timestamp: time.Now().UTC(),
		Vehicles:  vehicles,
		Trips:     trips,
	}, nil
}

// ExportJSON exports and encodes the owner's bundle.
func (s *BackupService) ExportJSON(ownerID string) ([]byte, error) {
	bundle, err := s.Export(ownerID)
	if err != nil {
		return nil, err
	}
	return EncodeBundle(bundle)
}

// Import decodes data and, only if the whole bundle is valid, replaces the
// owner's vehicles and trips with its contents.
func (s *BackupService) Import(ownerID string, data []byte) (*models.Bundle, error) {
	bundle, err := s.DecodeBundle(data)
	if err != nil {
		return nil, utils.NewBadRequestError("backup file could not be read", err)
	}

	if err := s.store.ReplaceAll(ownerID, bundle.Vehicles, bundle.Trips); err != nil {
		return nil, persistenceError("restore backup", err)
	}

	logrus.WithFields(logrus.Fields{
		"owner_id": ownerID,
		"vehicles": len(bundle.Vehicles),
		"trips":    len(bundle.Trips),
	}).Info("Backup restored")

	return bundle, nil
}

// Reset removes every vehicle and trip of the owner.
func (s *BackupService) Reset(ownerID string) error {
	if err := s.store.ReplaceAll(ownerID, nil, nil); err != nil {
		return persistenceError("reset data", err)
	}
	return nil
}

func EncodeBundle(bundle *models.Bundle) ([]byte, error) {
	return json.MarshalIndent(bundle, "", "  ")
}

func (s *BackupService) DecodeBundle(data []byte) (*models.Bundle, error) {
	var bundle models.Bundle

	decoder := json.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	if err := s.validate.Struct(&bundle); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBundle, utils.ValidationMessages(err))
	}
	if bundle.Version != models.BundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidBundle, bundle.Version)
	}

	return &bundle, nil
}
