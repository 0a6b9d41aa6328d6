package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
	"mycar-api/config"
	"mycar-api/database"
	"mycar-api/services"
	"mycar-api/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(io.Discard)
	if err := utils.RegisterBindingValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type recordingSender struct {
	messages []*gomail.Message
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	s.messages = append(s.messages, m...)
	return nil
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	sender *recordingSender
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.Initialize(database.DriverSQLite, filepath.Join(t.TempDir(), "api.db"), true)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		FromEmail:          "noreply@mycar.app",
		FromName:           "MyCar",
		RateLimitPerMinute: 10000,
		RateLimitBurst:     10000,
	}
	sender := &recordingSender{}
	deps := NewDependencies(db, cfg)
	deps.EmailService = services.NewEmailServiceWithSender(cfg, sender)

	return &testServer{t: t, router: NewRouter(deps), sender: sender}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *testServer) register(email string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", gin.H{
		"name":     "Alice",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &resp)
	s.token = resp.Token
}

func (s *testServer) createVehicle() string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/vehicles", gin.H{
		"make":          "Toyota",
		"model":         "Yaris",
		"year":          "2021",
		"fuel_type":     "Petrol",
		"tank_capacity": 0,
		"odometer":      500,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var vehicle struct {
		ID string `json:"id"`
	}
	decode(s.t, w, &vehicle)
	return vehicle.ID
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/vehicles", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.register("alice@example.com")
	w = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "A", "email": "alice@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")

	w = s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = s.do(http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "B", "email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Validation failed")

	s.token = "not-a-token"
	w = s.do(http.MethodGet, "/api/v1/vehicles", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFuelLedgerEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")
	vehicleID := s.createVehicle()

	w := s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer": 1000, "liters": 40, "price_per_unit": 1.8, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var first struct {
		ID        string  `json:"id"`
		TotalCost float64 `json:"total_cost"`
	}
	decode(t, w, &first)
	assert.Equal(t, 72.0, first.TotalCost)

	w = s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer_mode": "distance", "odometer": 400, "liters": 30, "total_cost": 51, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second struct {
		ID                string   `json:"id"`
		Odometer          float64  `json:"odometer"`
		PricePerUnit      float64  `json:"price_per_unit"`
		DistanceSinceLast *float64 `json:"distance_since_last"`
	}
	decode(t, w, &second)
	assert.Equal(t, 1400.0, second.Odometer)
	assert.Equal(t, 1.7, second.PricePerUnit)
	require.NotNil(t, second.DistanceSinceLast)
	assert.Equal(t, 400.0, *second.DistanceSinceLast)

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID+"/refills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []struct {
		ID         string   `json:"id"`
		Efficiency *float64 `json:"efficiency"`
	}
	decode(t, w, &ledger)
	require.Len(t, ledger, 2)
	assert.Equal(t, second.ID, ledger[0].ID)
	require.NotNil(t, ledger[1].Efficiency)
	assert.InDelta(t, 7.5, *ledger[1].Efficiency, 1e-9)

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID+"/fuel-stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.FuelSummary
	decode(t, w, &stats)
	assert.Equal(t, 2, stats.RefillCount)
	assert.InDelta(t, 7.5, stats.AverageConsumption, 1e-9)

	// Distance edits need a previous refill.
	w = s.do(http.MethodPut, "/api/v1/vehicles/"+vehicleID+"/refills/"+first.ID, gin.H{
		"odometer_mode": "distance", "odometer": 100, "liters": 40, "price_per_unit": 1.8,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer": 1500, "liters": 30, "price_per_unit": 1.8, "tank_level_before_refill": 1.4,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{"odometer": 1500, "liters": 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/vehicles/"+vehicleID+"/refills/"+second.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var vehicle struct {
		Odometer     float64 `json:"odometer"`
		RefillEvents []struct {
			Efficiency *float64 `json:"efficiency"`
		} `json:"refill_events"`
	}
	decode(t, w, &vehicle)
	assert.Equal(t, 1000.0, vehicle.Odometer)
	require.Len(t, vehicle.RefillEvents, 1)
	assert.Nil(t, vehicle.RefillEvents[0].Efficiency)

	w = s.do(http.MethodGet, "/api/v1/vehicles/unknown/refills", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFuelLedgerKeepsDegenerateRefills(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")
	vehicleID := s.createVehicle()

	w := s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer": 1000, "liters": 0, "price_per_unit": 1.8, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var empty struct {
		Liters    float64 `json:"liters"`
		TotalCost float64 `json:"total_cost"`
	}
	decode(t, w, &empty)
	assert.Zero(t, empty.Liters)
	assert.Zero(t, empty.TotalCost)

	w = s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer_mode": "distance", "odometer": -50, "liters": 30, "price_per_unit": 1.8, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var backwards struct {
		Odometer          float64  `json:"odometer"`
		DistanceSinceLast *float64 `json:"distance_since_last"`
	}
	decode(t, w, &backwards)
	assert.Equal(t, 950.0, backwards.Odometer)
	require.NotNil(t, backwards.DistanceSinceLast)
	assert.Equal(t, -50.0, *backwards.DistanceSinceLast)

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID+"/refills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []struct {
		Efficiency *float64 `json:"efficiency"`
	}
	decode(t, w, &ledger)
	require.Len(t, ledger, 2)
	assert.Nil(t, ledger[1].Efficiency, "a negative distance has no efficiency")
}

func TestTripEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")

	w := s.do(http.MethodPost, "/api/v1/trips", gin.H{
		"start_time": "2024-06-01T08:00:00Z",
		"end_time":   "2024-06-01T08:00:03Z",
		"distance":   100,
		"points": []gin.H{
			{"latitude": 45.0, "longitude": 7.0, "speed": 10, "timestamp": "2024-06-01T08:00:00Z"},
			{"latitude": 45.001, "longitude": 7.0, "speed": 45, "timestamp": "2024-06-01T08:00:01Z"},
			{"latitude": 45.002, "longitude": 7.0, "speed": 45, "timestamp": "2024-06-01T08:00:02Z"},
			{"latitude": 45.003, "longitude": 7.0, "speed": 0, "timestamp": "2024-06-01T08:00:03Z"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var trip struct {
		ID string `json:"id"`
	}
	decode(t, w, &trip)

	w = s.do(http.MethodGet, "/api/v1/trips/"+trip.ID+"/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.TripStats
	decode(t, w, &stats)
	assert.InDelta(t, 162.0, stats.MaxSpeedKmh, 1e-9)
	assert.Equal(t, 2.0, stats.RedZoneSeconds)
	assert.InDelta(t, 2.0/60, stats.SpeedDistribution[4].Minutes, 1e-9)

	w = s.do(http.MethodGet, "/api/v1/trips/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary services.TripsSummary
	decode(t, w, &summary)
	assert.Equal(t, 1, summary.TripCount)

	w = s.do(http.MethodPost, "/api/v1/trips", gin.H{
		"start_time": "2024-06-01T09:00:00Z",
		"end_time":   "2024-06-01T08:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/trips/"+trip.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/v1/trips/"+trip.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackupEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")
	vehicleID := s.createVehicle()

	w := s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer": 1000, "liters": 40, "price_per_unit": 1.8, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "MyCar_Backup_")
	exported := w.Body.Bytes()

	w = s.do(http.MethodDelete, "/api/v1/data", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/vehicles", nil)
	assert.JSONEq(t, "[]", w.Body.String())

	// Restore through a multipart upload.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "MyCar_Backup.json")
	require.NoError(t, err)
	_, err = part.Write(exported)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID+"/refills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []map[string]interface{}
	decode(t, w, &ledger)
	assert.Len(t, ledger, 1)

	// A corrupt bundle is rejected and the restored data stays.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", bytes.NewReader([]byte(`{"version":`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	w = s.do(http.MethodGet, "/api/v1/vehicles", nil)
	var vehicles []map[string]interface{}
	decode(t, w, &vehicles)
	assert.Len(t, vehicles, 1)

	w = s.do(http.MethodPost, "/api/v1/backup/email", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, s.sender.messages, 1)
	assert.Equal(t, []string{"alice@example.com"}, s.sender.messages[0].GetHeader("To"))
}

func TestBackupRestoreIntoAnotherAccount(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")
	aliceToken := s.token
	vehicleID := s.createVehicle()

	w := s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", gin.H{
		"odometer": 1000, "liters": 40, "price_per_unit": 1.8, "is_full_tank": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/api/v1/trips", gin.H{
		"start_time": "2024-06-01T08:00:00Z",
		"end_time":   "2024-06-01T08:10:00Z",
		"distance":   5000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	exported := json.RawMessage(w.Body.Bytes())

	s.register("bob@example.com")
	w = s.do(http.MethodPost, "/api/v1/backup/import", exported)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/vehicles", nil)
	var bobVehicles []struct {
		ID string `json:"id"`
	}
	decode(t, w, &bobVehicles)
	require.Len(t, bobVehicles, 1)
	assert.NotEqual(t, vehicleID, bobVehicles[0].ID)

	w = s.do(http.MethodGet, "/api/v1/vehicles/"+bobVehicles[0].ID+"/refills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []map[string]interface{}
	decode(t, w, &ledger)
	assert.Len(t, ledger, 1)

	w = s.do(http.MethodGet, "/api/v1/trips", nil)
	var trips []map[string]interface{}
	decode(t, w, &trips)
	assert.Len(t, trips, 1)

	// The source account is untouched.
	s.token = aliceToken
	w = s.do(http.MethodGet, "/api/v1/vehicles/"+vehicleID+"/refills", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &ledger)
	assert.Len(t, ledger, 1)
}

func TestCalculatorEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.register("alice@example.com")
	vehicleID := s.createVehicle()

	w := s.do(http.MethodPost, "/api/v1/calculator/calculate", gin.H{
		"road_length": 300, "average_fuel_price": 1.75, "vehicle_id": vehicleID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, "vehicle without history has no consumption")

	for _, refill := range []gin.H{
		{"odometer": 1000, "liters": 40, "price_per_unit": 1.8, "is_full_tank": true},
		{"odometer": 1500, "liters": 30, "price_per_unit": 1.8, "is_full_tank": true},
	} {
		w = s.do(http.MethodPost, "/api/v1/vehicles/"+vehicleID+"/refills", refill)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = s.do(http.MethodPost, "/api/v1/calculator/calculate", gin.H{
		"road_length": 300, "average_fuel_price": 1.75, "vehicle_id": vehicleID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cost services.TripCost
	decode(t, w, &cost)
	assert.Equal(t, 6.0, cost.Consumption)
	assert.Equal(t, 18.0, cost.FuelNeededLiters)

	w = s.do(http.MethodPost, "/api/v1/calculator/save", gin.H{
		"route_name": "Torino - Milano", "road_length": 140, "average_fuel_price": 1.8, "average_fuel_consumption": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/calculator/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]interface{}
	decode(t, w, &history)
	assert.Len(t, history, 1)

	w = s.do(http.MethodDelete, "/api/v1/calculator/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
