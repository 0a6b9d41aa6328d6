// File: /utils/response.go
package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendValidationError reports a request that failed binding or validation.
func SendValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Message: ValidationMessages(err),
		Code:    http.StatusBadRequest,
	})
}

// SendServiceError maps a service error to its HTTP status. Anything that is
// not a ServiceError is logged and reported as an internal error.
func SendServiceError(c *gin.Context, err error) {
	if serviceErr, ok := GetServiceError(err); ok && serviceErr.StatusCode < http.StatusInternalServerError {
		c.JSON(serviceErr.StatusCode, ErrorResponse{
			Error:   serviceErr.Message,
			Message: serviceErr.Code,
			Code:    serviceErr.StatusCode,
		})
		return
	}

	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error("Request failed")
	SendError(c, http.StatusInternalServerError, "Internal server error")
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}
