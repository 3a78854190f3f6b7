package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/svxtools/svxconf/pkg/logger"
)

// RequestLoggingMiddleware logs all HTTP requests with a per-request ID
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		// Echo the request ID back for traceability
		c.Writer.Header().Set("X-Request-ID", requestID)

		startTime := time.Now()

		method := c.Request.Method
		path := c.Request.URL.Path
		queryParams := c.Request.URL.RawQuery
		clientIP := c.ClientIP()

		c.Next()

		duration := time.Since(startTime)
		statusCode := c.Writer.Status()

		logFields := []interface{}{
			"request_id", requestID,
			"method", method,
			"path", path,
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP,
		}
		if queryParams != "" {
			logFields = append(logFields, "query", queryParams)
		}

		if statusCode >= 500 {
			logger.Error("HTTP request failed", logFields...)
		} else if statusCode >= 400 {
			logger.Warn("HTTP request client error", logFields...)
		} else {
			logger.Info("HTTP request", logFields...)
		}
	}
}
