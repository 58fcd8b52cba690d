package venue_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/storage"
)

// VenueController handles HTTP requests for the venue catalog.
type VenueController struct {
	store storage.Store
}

// NewVenueController creates a venue controller.
func NewVenueController(store storage.Store) *VenueController {
	return &VenueController{store: store}
}

// CreateVenueRequest is the payload for creating a venue.
type CreateVenueRequest struct {
	Name                string                  `json:"name" binding:"required"`
	Location            string                  `json:"location"`
	OpeningHour         shared_models.TimeOfDay `json:"opening_hour"`
	ClosingHour         shared_models.TimeOfDay `json:"closing_hour"`
	SlotDurationMinutes int                     `json:"slot_duration_minutes"`
	Price               float64                 `json:"price"`
}

// CreateVenue registers a new venue. Admin only.
func (vc *VenueController) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid create venue request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "details": err.Error()})
		return
	}
	if req.SlotDurationMinutes == 0 {
		req.SlotDurationMinutes = 60
	}

	venue, err := venue_models.NewVenue(req.Name, req.Location, req.OpeningHour, req.ClosingHour, req.SlotDurationMinutes, req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := vc.store.CreateVenue(c.Request.Context(), venue); err != nil {
		logger.ErrorLogger.Errorf("Failed to create venue: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create venue"})
		return
	}

	logger.InfoLogger.Infof("Venue %s (%s) created", venue.ID, venue.Name)
	c.JSON(http.StatusCreated, gin.H{"venue": venue})
}

// ListVenues returns the venue catalog.
func (vc *VenueController) ListVenues(c *gin.Context) {
	venues, err := vc.store.ListVenues(c.Request.Context())
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list venues: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch venues"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues})
}

// GetVenue returns a single venue by id.
func (vc *VenueController) GetVenue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid venue ID format"})
		return
	}

	venue, err := vc.store.GetVenue(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrVenueNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Venue not found"})
			return
		}
		logger.ErrorLogger.Errorf("Failed to fetch venue %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch venue"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue": venue})
}
