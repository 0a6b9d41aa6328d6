package jobs

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mycar-api/database"
	"mycar-api/models"
	"mycar-api/repositories"
	"mycar-api/services"
	"mycar-api/utils"
)

type staticUsers struct {
	users []models.User
	err   error
}

func (s staticUsers) ListUsers() ([]models.User, error) {
	return s.users, s.err
}

func newTestBackupService(t *testing.T) (*services.GarageService, *services.BackupService) {
	t.Helper()

	db, err := database.Initialize(database.DriverSQLite, filepath.Join(t.TempDir(), "jobs.db"), true)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	garage := services.NewGarageService(repositories.NewVehicleRepository(db), repositories.NewTripRepository(db))
	return garage, services.NewBackupService(garage, repositories.NewBackupRepository(db), utils.NewValidator())
}

func TestBackupJob_RunOnceWritesOneBundlePerUser(t *testing.T) {
	garage, backup := newTestBackupService(t)
	_, err := garage.CreateVehicle("u1", services.VehicleInput{Make: "Opel", Model: "Corsa"})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	job := NewBackupJob(backup, staticUsers{users: []models.User{{ID: "u1"}, {ID: "u2"}}}, dir, time.Hour)
	job.now = func() time.Time { return time.Date(2024, 7, 14, 3, 0, 0, 0, time.UTC) }

	written := job.RunOnce()
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "MyCar_Backup_u1_2024-07-14.json"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	var bundle models.Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	assert.Equal(t, models.BundleVersion, bundle.Version)
	require.Len(t, bundle.Vehicles, 1)
	assert.Equal(t, "Corsa", bundle.Vehicles[0].Model)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestBackupJob_UserListFailure(t *testing.T) {
	_, backup := newTestBackupService(t)
	job := NewBackupJob(backup, staticUsers{err: errors.New("db down")}, t.TempDir(), time.Hour)

	assert.Empty(t, job.RunOnce())
}

func TestBackupJob_StartStop(t *testing.T) {
	_, backup := newTestBackupService(t)
	dir := t.TempDir()
	job := NewBackupJob(backup, staticUsers{users: []models.User{{ID: "u1"}}}, dir, time.Hour)

	job.Start()
	require.Eventually(t, func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 1 && filepath.Ext(entries[0].Name()) == ".json"
	}, 5*time.Second, 20*time.Millisecond)
	job.Stop()
}
