package logger_middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/logger"
)

// GinLogger logs each request with method, path, status and latency.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		entry := logger.InfoLogger.WithFields(map[string]interface{}{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": latency.String(),
			"client":  c.ClientIP(),
		})

		switch {
		case status >= 500:
			logger.ErrorLogger.Errorf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		case status >= 400:
			logger.WarnLogger.Warnf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			entry.Info("request completed")
		}
	}
}
