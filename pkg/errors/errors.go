package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/svxtools/svxconf/pkg/logger"
)

// Common error messages (generic to avoid leaking internals to clients)
const (
	ErrNotFound        = "resource not found"
	ErrBadRequest      = "invalid request"
	ErrInternalServer  = "internal server error"
	ErrValidation      = "validation failed"
	ErrConflict        = "resource already exists"
	ErrOperationFailed = "operation failed"
)

// RespondWithError sends a generic error response and logs the detailed error
func RespondWithError(c *gin.Context, statusCode int, genericMessage string, detailedError error) {
	if detailedError != nil {
		logger.Error("Request error",
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"status", statusCode,
			"error", detailedError.Error(),
			"client_ip", c.ClientIP())
	}

	c.JSON(statusCode, gin.H{
		"error": genericMessage,
	})
}

// Convenience functions for common error scenarios

func BadRequest(c *gin.Context, err error) {
	RespondWithError(c, http.StatusBadRequest, ErrBadRequest, err)
}

func NotFound(c *gin.Context, err error) {
	RespondWithError(c, http.StatusNotFound, ErrNotFound, err)
}

func Conflict(c *gin.Context, err error) {
	RespondWithError(c, http.StatusConflict, ErrConflict, err)
}

func InternalServerError(c *gin.Context, err error) {
	RespondWithError(c, http.StatusInternalServerError, ErrInternalServer, err)
}

func ValidationError(c *gin.Context, err error) {
	RespondWithError(c, http.StatusBadRequest, ErrValidation, err)
}

func OperationFailed(c *gin.Context, err error) {
	RespondWithError(c, http.StatusInternalServerError, ErrOperationFailed, err)
}
