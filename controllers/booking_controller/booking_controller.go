package booking_controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/services/reservation"
	"github.com/gamio/venue-booking/storage"
	"github.com/gamio/venue-booking/utils"
	"github.com/gamio/venue-booking/utils/mail"
)

// BookingController handles HTTP requests for booking slots.
type BookingController struct {
	manager *reservation.Manager
	mailer  mail.Mailer
}

// NewBookingController creates a booking controller.
func NewBookingController(manager *reservation.Manager, mailer mail.Mailer) *BookingController {
	return &BookingController{manager: manager, mailer: mailer}
}

// BookSlotRequest is the payload for reserving a slot. The requester's
// identity comes from the auth token, not from the body. Time is a pointer
// because "00:00" is a bookable value; absence is detected as nil, not as
// the zero offset.
type BookSlotRequest struct {
	VenueID uuid.UUID                `json:"venue_id" binding:"required"`
	Date    shared_models.Date       `json:"date" binding:"required"`
	Time    *shared_models.TimeOfDay `json:"time"`
	People  int                      `json:"people"`
	Price   float64                  `json:"price"`
}

// BookSlot reserves the slot at the given venue, date and time. At most one
// concurrent caller wins; losers receive 409, which is final and not worth
// retrying.
func (bc *BookingController) BookSlot(c *gin.Context) {
	email, err := utils.GetEmailFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req BookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid booking request from %s: %v", email, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	if req.Time == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time is required"})
		return
	}

	booking, err := bc.manager.Reserve(c.Request.Context(), reservation.ReserveRequest{
		VenueID:  req.VenueID,
		Date:     req.Date,
		Time:     *req.Time,
		People:   req.People,
		Price:    req.Price,
		Username: utils.GetUsernameFromContext(c),
		Email:    email,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No slot available at that time"})
		case errors.Is(err, storage.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot already booked"})
		case errors.Is(err, booking_models.ErrEmailRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Failed to book slot for %s: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book slot"})
		}
		return
	}

	// Confirmation mail is best effort and never blocks the response.
	go func(b booking_models.Booking) {
		body := fmt.Sprintf("Your booking on %s at %s is confirmed.\nBooking ID: %s", b.Date, b.Time, b.ID)
		if err := bc.mailer.Send(b.Email, "Booking confirmed", body); err != nil {
			logger.WarnLogger.Warnf("Confirmation mail for booking %s failed: %v", b.ID, err)
		}
	}(*booking)

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// MyBookings lists the requester's own bookings.
func (bc *BookingController) MyBookings(c *gin.Context) {
	email, err := utils.GetEmailFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	bookings, err := bc.manager.MyBookings(c.Request.Context(), email)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list bookings for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// AdminListBookings lists every booking. Admin only.
func (bc *BookingController) AdminListBookings(c *gin.Context) {
	bookings, err := bc.manager.AllBookings(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list all bookings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking cancels the requester's booking and frees its slot.
// Cancelling an already-cancelled booking succeeds without changing
// anything.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	email, err := utils.GetEmailFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID format"})
		return
	}

	booking, err := bc.manager.Cancel(c.Request.Context(), id, email)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, reservation.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only cancel your own bookings"})
		default:
			logger.ErrorLogger.Errorf("Failed to cancel booking %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "booking": booking})
}
