package booking_models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/models/shared_models"
)

// ErrEmailRequired rejects bookings without an owner identity.
var ErrEmailRequired = errors.New("booking owner email is required")

// Booking is a customer's claim on one slot. Its (venue, date, time) target
// never changes after creation; cancel-and-rebook is the only way to move a
// reservation.
type Booking struct {
	ID      uuid.UUID `json:"id"`
	VenueID uuid.UUID `json:"venue_id"`
	// SlotID pins the booking to the exact slot row the reserve locked, so
	// cancel releases that slot and no other, whatever its location.
	SlotID        uuid.UUID               `json:"slot_id"`
	Date          shared_models.Date      `json:"date"`
	Time          shared_models.TimeOfDay `json:"time"`
	People        int                     `json:"people"`
	Price         float64                 `json:"price"`
	Username      string                  `json:"username"`
	Email         string                  `json:"email"`
	Status        string                  `json:"status"`
	PaymentStatus string                  `json:"payment_status"`
	TransactionID *string                 `json:"transaction_id,omitempty"`
	AmountPaid    *float64                `json:"amount_paid,omitempty"`
	PaymentDate   *time.Time              `json:"payment_date,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewBooking creates a Confirmed booking with payment Pending.
func NewBooking(venueID uuid.UUID, date shared_models.Date, t shared_models.TimeOfDay, people int, price float64, username, email string) (*Booking, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if people <= 0 {
		people = 1
	}
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for booking: %w", err)
	}
	now := time.Now().UTC()
	return &Booking{
		ID:            id,
		VenueID:       venueID,
		Date:          date,
		Time:          t,
		People:        people,
		Price:         price,
		Username:      username,
		Email:         email,
		Status:        shared_models.BookingStatusConfirmed,
		PaymentStatus: shared_models.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Active reports whether the booking still holds its slot.
func (b *Booking) Active() bool {
	return b.Status != shared_models.BookingStatusCancelled
}
