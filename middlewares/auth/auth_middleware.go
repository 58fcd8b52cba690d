package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/utils/jwt_parse"
)

// AuthMiddleware authenticates the request via the bearer JWT. On success
// the identity claims are available in the context for ownership checks.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt_parse.ParseJWTToken()(c)
		if c.IsAborted() {
			return
		}
		c.Next()
	}
}

// AdminOnly gates administrative routes on the is_admin token claim. It
// must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("is_admin")
		if !exists || isAdmin != true {
			email, _ := c.Get("email")
			logger.WarnLogger.Warnf("Non-admin identity %v attempted an admin action on %s", email, c.FullPath())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
