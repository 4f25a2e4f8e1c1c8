package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/threadloom/threadloom/pkg/errors"
)

// Response defines the base API payload.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo holds error details to send to clients.
type ErrorInfo struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	ShouldRefresh bool   `json:"should_refresh,omitempty"`
}

// Meta carries list metadata alongside collection payloads.
type Meta struct {
	Results int `json:"results"`
}

// Success writes a JSON success response.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// List writes a JSON success response for a collection, recording the result count.
func List(c *gin.Context, statusCode int, data interface{}, results int) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
		Meta:    &Meta{Results: results},
	})
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	info := &ErrorInfo{
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	// Clients watch for this flag to trigger a token rotation instead of a
	// full re-login.
	if appErr.Code == appErrors.ErrSessionExpired.Code {
		info.ShouldRefresh = true
	}

	c.JSON(status, Response{
		Success: false,
		Error:   info,
	})
}
