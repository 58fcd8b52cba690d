package slot_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/services/slotgen"
	"github.com/gamio/venue-booking/storage"
)

// SlotController handles HTTP requests for slot generation and management.
type SlotController struct {
	store     storage.Store
	generator *slotgen.Generator
}

// NewSlotController creates a slot controller.
func NewSlotController(store storage.Store, generator *slotgen.Generator) *SlotController {
	return &SlotController{store: store, generator: generator}
}

// GenerateSlotsRequest is the payload for a slot generation run. Either
// Dates lists explicit dates, or StartDate with Days covers a contiguous
// range. Omitted fields fall back to the venue's defaults; open_time and
// close_time are pointers so "00:00" is still a value, not an absence.
type GenerateSlotsRequest struct {
	Dates           []shared_models.Date     `json:"dates"`
	StartDate       shared_models.Date       `json:"start_date"`
	Days            int                      `json:"days"`
	OpenTime        *shared_models.TimeOfDay `json:"open_time"`
	CloseTime       *shared_models.TimeOfDay `json:"close_time"`
	DurationMinutes int                      `json:"duration_minutes"`
	Price           float64                  `json:"price"`
	Location        string                   `json:"location"`
}

// GenerateSlots creates bookable slots for a venue. Idempotent: windows
// that already exist are skipped, and the response reports only what this
// run added. Admin only.
func (sc *SlotController) GenerateSlots(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue ID format"})
		return
	}

	var req GenerateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid generate slots request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}

	created, err := sc.generator.Generate(c.Request.Context(), slotgen.Request{
		VenueID:         venueID,
		Dates:           req.Dates,
		StartDate:       req.StartDate,
		Days:            req.Days,
		OpenTime:        req.OpenTime,
		CloseTime:       req.CloseTime,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Location:        req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrVenueNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
		case errors.Is(err, slotgen.ErrInvalidDuration), errors.Is(err, slotgen.ErrNoDates),
			errors.Is(err, slotgen.ErrIncompleteHours):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.ErrorLogger.Errorf("Slot generation failed for venue %s: %v", venueID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slots"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": len(created), "slots": created})
}

// ListSlots returns a venue's slots for one date. The date query parameter
// is required.
func (sc *SlotController) ListSlots(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue ID format"})
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	date, err := shared_models.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
		return
	}

	slots, err := sc.store.ListSlots(c.Request.Context(), storage.SlotFilter{VenueID: venueID, Date: &date})
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list slots for venue %s: %v", venueID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// AdminListSlots returns slots across venues, optionally filtered by
// venue_id and date. Admin only.
func (sc *SlotController) AdminListSlots(c *gin.Context) {
	var filter storage.SlotFilter

	if v := c.Query("venue_id"); v != "" {
		venueID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue ID format"})
			return
		}
		filter.VenueID = venueID
	}
	if d := c.Query("date"); d != "" {
		date, err := shared_models.ParseDate(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format, expected YYYY-MM-DD"})
			return
		}
		filter.Date = &date
	}

	slots, err := sc.store.ListSlots(c.Request.Context(), filter)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list slots: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GetSlot returns a single slot by id. Admin only.
func (sc *SlotController) GetSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID format"})
		return
	}

	slot, err := sc.store.GetSlotByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch slot %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch slot"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slot": slot})
}

// DeleteSlot removes an unbooked slot. A booked slot is never deleted,
// whatever its booking's payment state. Admin only.
func (sc *SlotController) DeleteSlot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID format"})
		return
	}

	if err := sc.store.DeleteSlot(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrSlotNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		case errors.Is(err, storage.ErrSlotBooked):
			c.JSON(http.StatusConflict, gin.H{"error": "Slot is booked and cannot be deleted"})
		default:
			logger.ErrorLogger.Errorf("Failed to delete slot %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete slot"})
		}
		return
	}

	logger.InfoLogger.Infof("Slot %s deleted", id)
	c.JSON(http.StatusOK, gin.H{"message": "Slot deleted"})
}
