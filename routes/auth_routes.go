package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/controllers/auth_controller"
	"github.com/gamio/venue-booking/middlewares"
)

// RegisterAuthRoutes wires the passwordless login endpoints. Both are rate
// limited per client to slow down code guessing.
func RegisterAuthRoutes(router *gin.Engine, ac *auth_controller.AuthController) {
	router.POST("/auth/request-otp", middlewares.NewRateLimiter("5-10m", "request_otp"), ac.RequestOTP)
	router.POST("/auth/verify-otp", middlewares.NewRateLimiter("10-10m", "verify_otp"), ac.VerifyOTP)
}
