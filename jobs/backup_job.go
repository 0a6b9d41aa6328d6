// File: /jobs/backup_job.go
package jobs

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"mycar-api/models"
	"mycar-api/services"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UserLister lists the accounts whose data gets backed up.
type UserLister interface {
	ListUsers() ([]models.User, error)
}

// BackupJob periodically writes one bundle file per user into a directory.
type BackupJob struct {
	backup   *services.BackupService
	users    UserLister
	dir      string
	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
	now      func() time.Time
}

func NewBackupJob(backup *services.BackupService, users UserLister, dir string, interval time.Duration) *BackupJob {
	return &BackupJob{
		backup:   backup,
		users:    users,
		dir:      dir,
		interval: interval,
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the backup job
func (j *BackupJob) Start() {
	j.ticker = time.NewTicker(j.interval)
	logrus.WithFields(logrus.Fields{
		"dir":      j.dir,
		"interval": j.interval.String(),
	}).Info("Backup job started")

	go func() {
		j.RunOnce()

		for {
			select {
			case <-j.ticker.C:
				j.RunOnce()
			case <-j.done:
				logrus.Info("Backup job stopped")
				return
			}
		}
	}()
}

// Stop stops the backup job
func (j *BackupJob) Stop() {
	j.ticker.Stop()
	close(j.done)
}

// RunOnce backs up every user and returns the files written.
func (j *BackupJob) RunOnce() []string {
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		logrus.WithError(err).Error("Failed to create backup directory")
		return nil
	}

	users, err := j.users.ListUsers()
	if err != nil {
		logrus.WithError(err).Error("Failed to list users for backup")
		return nil
	}

	var written []string
	for _, user := range users {
		path, err := j.backupUser(user.ID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": user.ID,
				"error":   err.Error(),
			}).Error("Backup failed")
			continue
		}
		written = append(written, path)
	}

	logrus.WithField("files", len(written)).Info("Backup run completed")
	return written
}

func (j *BackupJob) backupUser(userID string) (string, error) {
	data, err := j.backup.ExportJSON(userID)
	if err != nil {
		return "", err
	}

	name := strings.Replace(services.BackupFileName(j.now()), "MyCar_Backup_", fmt.Sprintf("MyCar_Backup_%s_", userID), 1)
	path := filepath.Join(j.dir, name)

	// Write to a temp file first so a crash never leaves a truncated bundle.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
