package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/gamio/venue-booking/controllers/slot_controller"
	"github.com/gamio/venue-booking/middlewares/auth"
)

// RegisterSlotRoutes wires slot listing for customers and slot
// administration for admins.
func RegisterSlotRoutes(router *gin.Engine, sc *slot_controller.SlotController) {
	router.GET("/venues/:id/slots", sc.ListSlots)

	admin := router.Group("/", auth.AuthMiddleware(), auth.AdminOnly())
	admin.POST("/venues/:id/slots", sc.GenerateSlots)
	admin.GET("/admin/slots", sc.AdminListSlots)
	admin.GET("/slots/:id", sc.GetSlot)
	admin.DELETE("/slots/:id", sc.DeleteSlot)
}
