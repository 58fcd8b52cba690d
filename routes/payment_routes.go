package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/controllers/payment_controller"
	"github.com/gamio/venue-booking/middlewares/auth"
)

// RegisterPaymentRoutes wires the payment lifecycle endpoints. Refunds are
// an administrative capability.
func RegisterPaymentRoutes(router *gin.Engine, pc *payment_controller.PaymentController) {
	authed := router.Group("/", auth.AuthMiddleware())
	authed.POST("/payments/confirm", pc.ConfirmPayment)
	authed.POST("/payments/refund", auth.AdminOnly(), pc.RefundPayment)
}
