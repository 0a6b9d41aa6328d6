// File: /controllers/backup_controller.go
package controllers

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"io"
	"mycar-api/repositories"
	"mycar-api/services"
	"mycar-api/utils"
	"net/http"
	"strings"
	"time"
)

const maxBackupSize = 32 << 20

type BackupController struct {
	backup       *services.BackupService
	users        *repositories.UserRepository
	emailService *services.EmailService
}

func NewBackupController(backup *services.BackupService, users *repositories.UserRepository, emailService *services.EmailService) *BackupController {
	return &BackupController{
		backup:       backup,
		users:        users,
		emailService: emailService,
	}
}

// Export streams the user's bundle as a downloadable JSON file.
func (bc *BackupController) Export(c *gin.Context) {
	data, err := bc.backup.ExportJSON(c.GetString("user_id"))
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.BackupFileName(time.Now())))
	c.Data(http.StatusOK, "application/json", data)
}

// Import accepts either a multipart "file" upload or a raw JSON body.
func (bc *BackupController) Import(c *gin.Context) {
	data, err := readBackupPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read backup file"})
		return
	}

	bundle, err := bc.backup.Import(c.GetString("user_id"), data)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Backup restored successfully",
		"vehicles": len(bundle.Vehicles),
		"trips":    len(bundle.Trips),
	})
}

func readBackupPayload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBackupSize)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, err
		}
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(c.Request.Body)
}

// Email sends the user's bundle to their account address.
func (bc *BackupController) Email(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := bc.users.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	data, err := bc.backup.ExportJSON(userID)
	if err != nil {
		utils.SendServiceError(c, err)
		return
	}

	if err := bc.emailService.SendBackup(user.Email, user.Name, data); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send backup email"})
		return
	}
	utils.SendSuccess(c, "Backup sent to "+user.Email, nil)
}

// Reset deletes every vehicle and trip of the user.
func (bc *BackupController) Reset(c *gin.Context) {
	if err := bc.backup.Reset(c.GetString("user_id")); err != nil {
		utils.SendServiceError(c, err)
		return
	}
	utils.SendSuccess(c, "All data deleted", nil)
}
