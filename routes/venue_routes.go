package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/controllers/venue_controller"
	"github.com/gamio/venue-booking/middlewares/auth"
)

// RegisterVenueRoutes wires the venue catalog endpoints.
func RegisterVenueRoutes(router *gin.Engine, vc *venue_controller.VenueController) {
	router.GET("/venues", vc.ListVenues)
	router.GET("/venues/:id", vc.GetVenue)

	router.POST("/venues", auth.AuthMiddleware(), auth.AdminOnly(), vc.CreateVenue)
}
