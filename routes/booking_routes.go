package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/controllers/booking_controller"
	"github.com/gamio/venue-booking/middlewares"
	"github.com/gamio/venue-booking/middlewares/auth"
)

// RegisterBookingRoutes wires the booking endpoints. Creation is rate
// limited per identity so a single client cannot hammer contested slots.
func RegisterBookingRoutes(router *gin.Engine, bc *booking_controller.BookingController) {
	authed := router.Group("/", auth.AuthMiddleware())
	authed.POST("/bookings", middlewares.NewRateLimiter("30-1m", "book_slot"), bc.BookSlot)
	authed.GET("/bookings", bc.MyBookings)
	authed.DELETE("/bookings/:id", bc.CancelBooking)

	authed.GET("/admin/bookings", auth.AdminOnly(), bc.AdminListBookings)
}
