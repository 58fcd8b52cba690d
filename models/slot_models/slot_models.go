package slot_models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/models/shared_models"
)

// Slot is one discrete bookable time window for a venue on a given date.
// IsBooked is a projection of "an active booking references this window";
// it is only ever written inside the same store operation that writes the
// booking.
type Slot struct {
	ID              uuid.UUID               `json:"id"`
	VenueID         uuid.UUID               `json:"venue_id"`
	Date            shared_models.Date      `json:"date"`
	StartTime       shared_models.TimeOfDay `json:"start_time"`
	DurationMinutes int                     `json:"duration_minutes"`
	Price           float64                 `json:"price"`
	Location        string                  `json:"location"`
	IsBooked        bool                    `json:"is_booked"`
	CreatedAt       time.Time               `json:"created_at"`
}

// Key identifies a slot by its natural key. Two slots with the same Key
// never coexist.
type Key struct {
	VenueID   uuid.UUID
	Date      shared_models.Date
	StartTime shared_models.TimeOfDay
	Location  string
}

// Key returns the slot's natural key.
func (s *Slot) Key() Key {
	return Key{VenueID: s.VenueID, Date: s.Date, StartTime: s.StartTime, Location: s.Location}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", k.VenueID, k.Date, k.StartTime, k.Location)
}

// NewSlot creates an unbooked Slot struct with a fresh UUID.
func NewSlot(venueID uuid.UUID, date shared_models.Date, start shared_models.TimeOfDay, durationMinutes int, price float64, location string) (*Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for slot: %w", err)
	}
	return &Slot{
		ID:              id,
		VenueID:         venueID,
		Date:            date,
		StartTime:       start,
		DurationMinutes: durationMinutes,
		Price:           price,
		Location:        location,
		IsBooked:        false,
		CreatedAt:       time.Now().UTC(),
	}, nil
}
