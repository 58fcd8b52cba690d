// utils/context.go
package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/logger"
)

// GetEmailFromContext extracts the authenticated identity's email from the
// Gin context, where the auth middleware stored it. Ownership checks always
// compare against this value, never against client-supplied fields.
func GetEmailFromContext(c *gin.Context) (string, error) {
	v, exists := c.Get("email")
	if !exists {
		logger.ErrorLogger.Error("Identity email not found in context.")
		return "", ErrIdentityNotFound
	}
	email, ok := v.(string)
	if !ok || email == "" {
		logger.ErrorLogger.Errorf("Identity email in context has wrong type: %T", v)
		return "", ErrIdentityNotFound
	}
	return email, nil
}

// GetUsernameFromContext returns the display name claim, empty when absent.
func GetUsernameFromContext(c *gin.Context) string {
	if v, exists := c.Get("username"); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
