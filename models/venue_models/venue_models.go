package venue_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/models/shared_models"
)

// Venue is a bookable location with fixed operating hours and a default
// slot duration. Changing its hours never regenerates existing slots.
type Venue struct {
	ID                  uuid.UUID               `json:"id"`
	Name                string                  `json:"name"`
	Location            string                  `json:"location"`
	OpeningHour         shared_models.TimeOfDay `json:"opening_hour"`
	ClosingHour         shared_models.TimeOfDay `json:"closing_hour"`
	SlotDurationMinutes int                     `json:"slot_duration_minutes"`
	Price               float64                 `json:"price"`
	CreatedAt           time.Time               `json:"created_at"`
}

// NewVenue creates a Venue struct with a fresh UUID.
func NewVenue(name, location string, opening, closing shared_models.TimeOfDay, durationMinutes int, price float64) (*Venue, error) {
	if name == "" {
		return nil, fmt.Errorf("venue name is required")
	}
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for venue: %w", err)
	}
	return &Venue{
		ID:                  id,
		Name:                name,
		Location:            location,
		OpeningHour:         opening,
		ClosingHour:         closing,
		SlotDurationMinutes: durationMinutes,
		Price:               price,
		CreatedAt:           time.Now().UTC(),
	}, nil
}
