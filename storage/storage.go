// Package storage defines the durable-store contract for the booking
// engine. The slot/booking pair for one natural key is the unit of
// contention: every mutation of that pair happens inside a single store
// operation, never as separate read-then-write steps.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/slot_models"
	"github.com/gamio/venue-booking/models/venue_models"
)

var (
	// ErrVenueNotFound is returned when a referenced venue does not exist.
	ErrVenueNotFound = errors.New("venue not found")
	// ErrSlotNotFound is returned when no slot matches the requested key or id.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrBookingNotFound is returned when a referenced booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrSlotTaken is returned when a reservation targets a slot already held
	// by an active booking. It is a business outcome, not a transient fault.
	ErrSlotTaken = errors.New("slot already booked")
	// ErrSlotBooked is returned when deleting a slot an active booking holds.
	ErrSlotBooked = errors.New("cannot delete a booked slot")
	// ErrInvalidPaymentState is returned when a payment transition starts
	// from a status other than the required one.
	ErrInvalidPaymentState = errors.New("payment is not in the required state")
)

// SlotFilter narrows ListSlots. Zero-value fields do not filter.
type SlotFilter struct {
	VenueID uuid.UUID
	Date    *shared_models.Date
}

// Store is the durable store. ReserveSlot, CancelBooking and
// CompareAndSetPaymentStatus are atomic with respect to each other for the
// same natural key, even across processes.
type Store interface {
	// Venues.
	CreateVenue(ctx context.Context, v *venue_models.Venue) error
	GetVenue(ctx context.Context, id uuid.UUID) (*venue_models.Venue, error)
	ListVenues(ctx context.Context) ([]venue_models.Venue, error)

	// Slots. InsertSlotIfAbsent is the idempotent generation primitive: it
	// reports false without error when a slot with the same natural key
	// already exists, and never mutates existing slots.
	InsertSlotIfAbsent(ctx context.Context, s *slot_models.Slot) (bool, error)
	GetSlotByID(ctx context.Context, id uuid.UUID) (*slot_models.Slot, error)
	ListSlots(ctx context.Context, f SlotFilter) ([]slot_models.Slot, error)
	// DeleteSlot fails with ErrSlotBooked while the slot is held.
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	// ReserveSlot atomically inserts the booking and flips the target
	// slot's IsBooked from false to true, recording the reserved slot's id
	// on the booking. Of any set of concurrent calls for the same key, at
	// most one succeeds; the rest get ErrSlotTaken. ErrSlotNotFound when
	// the venue has no generated slot at the key.
	ReserveSlot(ctx context.Context, b *booking_models.Booking) error

	// CancelBooking marks the booking Cancelled and releases its slot in
	// one atomic step. Cancelling an already-cancelled booking is a no-op
	// success. Ownership is the caller's concern.
	CancelBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)

	GetBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]booking_models.Booking, error)
	ListAllBookings(ctx context.Context) ([]booking_models.Booking, error)

	// CompareAndSetPaymentStatus moves paymentStatus from expect to next,
	// recording transaction details when provided. ErrInvalidPaymentState
	// when the booking exists but its status is not expect. Never touches
	// slot state.
	CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expect, next string, txnID *string, amount *float64, paidAt *time.Time) (*booking_models.Booking, error)

	// PurgeBookingsBefore deletes bookings dated strictly before cutoff,
	// returning how many were removed. Slot state is left untouched.
	PurgeBookingsBefore(ctx context.Context, cutoff shared_models.Date) (int64, error)
}
