// File: /services/garage_service.go
package services

import (
	"errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"mycar-api/models"
	"mycar-api/repositories"
	"mycar-api/utils"
	"sync"
	"time"
)

var (
	ErrVehicleNotFound    = utils.NewNotFoundError("vehicle", nil)
	ErrRefillNotFound     = utils.NewNotFoundError("refill", nil)
	ErrServiceLogNotFound = utils.NewNotFoundError("service log", nil)
	ErrTripNotFound       = utils.NewNotFoundError("trip", nil)
)

const (
	OdometerModeAbsolute = "absolute"
	OdometerModeDistance = "distance"
)

// VehicleStore persists vehicles and their ledgers.
type VehicleStore interface {
	ListVehicles(ownerID string) ([]models.Vehicle, error)
	GetVehicle(ownerID, vehicleID string) (*models.Vehicle, error)
	CreateVehicle(vehicle *models.Vehicle) error
	UpdateVehicle(vehicle *models.Vehicle) error
	DeleteVehicle(ownerID, vehicleID string) error
	SaveLedger(vehicle *models.Vehicle) error
	CreateServiceLog(log *models.ServiceLog) error
	DeleteServiceLog(vehicleID, serviceLogID string) error
}

// TripStore persists an owner's trips as one collection.
type TripStore interface {
	LoadTrips(ownerID string) ([]models.TripRecord, error)
	SaveTrips(ownerID string, trips []models.TripRecord) error
}

type VehicleInput struct {
	Make         string
	Model        string
	Year         string
	LicensePlate string
	FuelType     string
	TankCapacity float64
	Horsepower   int
	Displacement int
	Odometer     float64
}

type RefillInput struct {
	Date time.Time
	// OdometerMode is OdometerModeAbsolute (default) or OdometerModeDistance, in
	// which case Odometer holds the distance since the previous refill.
	OdometerMode          string
	Odometer              float64
	Liters                float64
	PricePerUnit          float64
	TotalCost             float64
	FuelType              string
	TankLevelBeforeRefill float64
	TankLevelAfterRefill  *float64
	TrackTankLevel        bool
	IsFullTank            bool
	StationName           *string
}

type TripInput struct {
	StartTime    time.Time
	EndTime      time.Time
	Distance     float64
	VehicleID    *string
	VehicleLabel *string
	Points       []models.TripPoint
}

// GarageService owns every mutation of vehicles, fuel ledgers and trips.
type GarageService struct {
	vehicles VehicleStore
	trips    TripStore

	mutex        sync.Mutex
	vehicleLocks map[string]*keyLock
	ownerLocks   map[string]*keyLock
}

func NewGarageService(vehicles VehicleStore, trips TripStore) *GarageService {
	return &GarageService{
		vehicles:     vehicles,
		trips:        trips,
		vehicleLocks: make(map[string]*keyLock),
		ownerLocks:   make(map[string]*keyLock),
	}
}

func (s *GarageService) lockVehicle(vehicleID string) func() {
	return lockKey(&s.mutex, s.vehicleLocks, vehicleID)
}

func (s *GarageService) lockOwner(ownerID string) func() {
	return lockKey(&s.mutex, s.ownerLocks, ownerID)
}

// keyLock is a mutex shared by every caller holding or waiting on one key.
// The entry is dropped from its map once refs reaches zero.
type keyLock struct {
	sync.Mutex
	refs int
}

func lockKey(guard *sync.Mutex, locks map[string]*keyLock, key string) func() {
	guard.Lock()
	lock, exists := locks[key]
	if !exists {
		lock = &keyLock{}
		locks[key] = lock
	}
	lock.refs++
	guard.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()

		guard.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(locks, key)
		}
		guard.Unlock()
	}
}

// Vehicles

func (s *GarageService) ListVehicles(ownerID string) ([]models.Vehicle, error) {
	vehicles, err := s.vehicles.ListVehicles(ownerID)
	if err != nil {
		return nil, persistenceError("load vehicles", err)
	}
	return vehicles, nil
}

func (s *GarageService) GetVehicle(ownerID, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.GetVehicle(ownerID, vehicleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, persistenceError("load vehicle", err)
	}
	return vehicle, nil
}

func (s *GarageService) CreateVehicle(ownerID string, input VehicleInput) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
	}
	applyVehicleInput(vehicle, input)

	if err := s.vehicles.CreateVehicle(vehicle); err != nil {
		return nil, persistenceError("create vehicle", err)
	}
	return vehicle, nil
}

func (s *GarageService) UpdateVehicle(ownerID, vehicleID string, input VehicleInput) (*models.Vehicle, error) {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	vehicle, err := s.GetVehicle(ownerID, vehicleID)
	if err != nil {
		return nil, err
	}
	applyVehicleInput(vehicle, input)

	if err := s.vehicles.UpdateVehicle(vehicle); err != nil {
		return nil, persistenceError("update vehicle", err)
	}
	return vehicle, nil
}

func (s *GarageService) DeleteVehicle(ownerID, vehicleID string) error {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	if err := s.vehicles.DeleteVehicle(ownerID, vehicleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVehicleNotFound
		}
		return persistenceError("delete vehicle", err)
	}
	return nil
}

func applyVehicleInput(vehicle *models.Vehicle, input VehicleInput) {
	vehicle.Make = input.Make
	vehicle.Model = input.Model
	vehicle.Year = input.Year
	vehicle.LicensePlate = input.LicensePlate
	vehicle.FuelType = input.FuelType
	vehicle.TankCapacity = input.TankCapacity
	vehicle.Horsepower = input.Horsepower
	vehicle.Displacement = input.Displacement
	vehicle.Odometer = input.Odometer
}

// Fuel ledger

// AddRefill records a new most-recent refill on the vehicle.
func (s *GarageService) AddRefill(ownerID, vehicleID string, input RefillInput) (*models.RefillEvent, error) {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	vehicle, err := s.GetVehicle(ownerID, vehicleID)
	if err != nil {
		return nil, err
	}

	odometer := input.Odometer
	if input.OdometerMode == OdometerModeDistance {
		odometer = ResolveInsertOdometer(vehicle, input.Odometer)
	}

	event := newRefillEvent(uuid.New().String(), vehicle, input, odometer)
	InsertRefill(vehicle, event)

	if err := s.vehicles.SaveLedger(vehicle); err != nil {
		return nil, persistenceError("save fuel ledger", err)
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicleID,
		"refill_id":  event.ID,
		"odometer":   odometer,
	}).Debug("Refill added")

	return &vehicle.RefillEvents[0], nil
}

// UpdateRefill edits a refill anywhere in the ledger.
func (s *GarageService) UpdateRefill(ownerID, vehicleID, refillID string, input RefillInput) (*models.RefillEvent, error) {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	vehicle, err := s.GetVehicle(ownerID, vehicleID)
	if err != nil {
		return nil, err
	}

	index := RefillIndex(vehicle, refillID)
	if index < 0 {
		return nil, ErrRefillNotFound
	}

	odometer := input.Odometer
	if input.OdometerMode == OdometerModeDistance {
		odometer, err = ResolveEditOdometer(&vehicle.RefillEvents[index], input.Odometer)
		if err != nil {
			return nil, utils.NewBadRequestError("distance entry needs a previous refill, use an absolute odometer", err)
		}
	}

	event := newRefillEvent(refillID, vehicle, input, odometer)
	if err := UpdateRefill(vehicle, event, index); err != nil {
		return nil, ErrRefillNotFound
	}

	if err := s.vehicles.SaveLedger(vehicle); err != nil {
		return nil, persistenceError("save fuel ledger", err)
	}
	return &vehicle.RefillEvents[index], nil
}

// DeleteRefill removes a refill from the ledger.
func (s *GarageService) DeleteRefill(ownerID, vehicleID, refillID string) error {
	unlock := s.lockVehicle(vehicleID)
	defer unlock()

	vehicle, err := s.GetVehicle(ownerID, vehicleID)
	if err != nil {
		return err
	}

	index := RefillIndex(vehicle, refillID)
	if index < 0 {
		return ErrRefillNotFound
	}
	if err := DeleteRefill(vehicle, index); err != nil {
		return ErrRefillNotFound
	}

	if err := s.vehicles.SaveLedger(vehicle); err != nil {
		return persistenceError("save fuel ledger", err)
	}
	return nil
}

func (s *GarageService) FuelSummary(ownerID, vehicleID string) (*FuelSummary, error) {
	vehicle, err := s.GetVehicle(ownerID, vehicleID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeFuel(vehicle)
	return &summary, nil
}

func newRefillEvent(id string, vehicle *models.Vehicle, input RefillInput, odometer float64) models.RefillEvent {
	liters, price, total := input.Liters, input.PricePerUnit, input.TotalCost
	switch {
	case total == 0:
		liters, price, total = ReconcilePricing(liters, price, total, PricingFieldPrice)
	case price == 0:
		liters, price, total = ReconcilePricing(liters, price, total, PricingFieldTotal)
	case liters == 0:
		liters, price, total = ReconcilePricing(liters, price, total, PricingFieldTotal)
	}

	levelAfter := input.TankLevelAfterRefill
	if levelAfter == nil {
		levelAfter = LevelAfterPurchase(vehicle.TankCapacity, input.TankLevelBeforeRefill, liters, input.IsFullTank, input.TrackTankLevel)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	fuelType := input.FuelType
	if fuelType == "" {
		fuelType = vehicle.FuelType
	}

	return models.RefillEvent{
		ID:                    id,
		VehicleID:             vehicle.ID,
		Date:                  date,
		Odometer:              odometer,
		Liters:                liters,
		PricePerUnit:          price,
		TotalCost:             total,
		FuelType:              fuelType,
		TankLevelBeforeRefill: input.TankLevelBeforeRefill,
		TankLevelAfterRefill:  levelAfter,
		IsFullTank:            input.IsFullTank,
		StationName:           input.StationName,
	}
}

// Service records

func (s *GarageService) AddServiceLog(ownerID, vehicleID string, log models.ServiceLog) (*models.ServiceLog, error) {
	if _, err := s.GetVehicle(ownerID, vehicleID); err != nil {
		return nil, err
	}

	log.ID = uuid.New().String()
	log.VehicleID = vehicleID
	if log.Date.IsZero() {
		log.Date = time.Now()
	}

	if err := s.vehicles.CreateServiceLog(&log); err != nil {
		return nil, persistenceError("create service log", err)
	}
	return &log, nil
}

func (s *GarageService) DeleteServiceLog(ownerID, vehicleID, serviceLogID string) error {
	if _, err := s.GetVehicle(ownerID, vehicleID); err != nil {
		return err
	}

	if err := s.vehicles.DeleteServiceLog(vehicleID, serviceLogID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrServiceLogNotFound
		}
		return persistenceError("delete service log", err)
	}
	return nil
}

// Trips

func (s *GarageService) ListTrips(ownerID string) ([]models.TripRecord, error) {
	trips, err := s.trips.LoadTrips(ownerID)
	if err != nil {
		return nil, persistenceError("load trips", err)
	}
	return trips, nil
}

func (s *GarageService) GetTrip(ownerID, tripID string) (*models.TripRecord, error) {
	trips, err := s.ListTrips(ownerID)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		if trips[i].ID == tripID {
			return &trips[i], nil
		}
	}
	return nil, ErrTripNotFound
}

// SaveTrip stores a finished recording as the most recent trip.
func (s *GarageService) SaveTrip(ownerID string, input TripInput) (*models.TripRecord, error) {
	label := input.VehicleLabel
	if input.VehicleID != nil {
		vehicle, err := s.GetVehicle(ownerID, *input.VehicleID)
		if err != nil {
			return nil, err
		}
		name := vehicle.DisplayName()
		label = &name
	}

	unlock := s.lockOwner(ownerID)
	defer unlock()

	trips, err := s.ListTrips(ownerID)
	if err != nil {
		return nil, err
	}

	trip := models.TripRecord{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Distance:     input.Distance,
		VehicleLabel: label,
		Points:       input.Points,
	}
	trips = append([]models.TripRecord{trip}, trips...)

	if err := s.trips.SaveTrips(ownerID, trips); err != nil {
		return nil, persistenceError("save trips", err)
	}
	return &trip, nil
}

func (s *GarageService) DeleteTrip(ownerID, tripID string) error {
	unlock := s.lockOwner(ownerID)
	defer unlock()

	trips, err := s.ListTrips(ownerID)
	if err != nil {
		return err
	}

	kept := trips[:0]
	for _, trip := range trips {
		if trip.ID != tripID {
			kept = append(kept, trip)
		}
	}
	if len(kept) == len(trips) {
		return ErrTripNotFound
	}

	if err := s.trips.SaveTrips(ownerID, kept); err != nil {
		return persistenceError("save trips", err)
	}
	return nil
}

func (s *GarageService) TripsSummary(ownerID string) (*TripsSummary, error) {
	trips, err := s.ListTrips(ownerID)
	if err != nil {
		return nil, err
	}
	summary := SummarizeTrips(trips)
	return &summary, nil
}

func persistenceError(action string, err error) error {
	return utils.NewServiceErrorWithCause("PERSISTENCE_ERROR", "failed to "+action, err)
}
