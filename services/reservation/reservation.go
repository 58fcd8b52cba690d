// Package reservation is the correctness-critical booking engine. All
// mutation of a slot/booking pair goes through the store's atomic
// primitives; no code path here reads a slot's booked flag and writes a
// booking as two separate steps.
package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/storage"
)

// ErrForbidden is returned when the requesting identity does not own the
// booking it is acting on.
var ErrForbidden = errors.New("booking does not belong to this identity")

// Manager creates and cancels bookings.
type Manager struct {
	store storage.Store
}

// NewManager creates a Manager backed by the given store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// ReserveRequest describes one reservation attempt. Email is the
// authenticated identity, never a client-supplied value.
type ReserveRequest struct {
	VenueID  uuid.UUID
	Date     shared_models.Date
	Time     shared_models.TimeOfDay
	People   int
	Price    float64
	Username string
	Email    string
}

// Reserve books the slot at the request's natural key. Of any set of
// concurrent calls for the same key exactly one succeeds; the others get
// storage.ErrSlotTaken, which callers must treat as a final business
// outcome, not something to retry. storage.ErrSlotNotFound when the venue
// has no generated slot at that key.
func (m *Manager) Reserve(ctx context.Context, req ReserveRequest) (*booking_models.Booking, error) {
	booking, err := booking_models.NewBooking(req.VenueID, req.Date, req.Time, req.People, req.Price, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	if err := m.store.ReserveSlot(ctx, booking); err != nil {
		if errors.Is(err, storage.ErrSlotTaken) {
			logger.WarnLogger.Warnf("Reserve conflict for venue %s %s %s", req.VenueID, req.Date, req.Time)
		}
		return nil, err
	}

	logger.InfoLogger.Infof("Booking %s confirmed for venue %s %s %s (%s)",
		booking.ID, req.VenueID, req.Date, req.Time, req.Email)
	return booking, nil
}

// Cancel marks the booking Cancelled and frees its slot. Only the booking's
// owner may cancel; cancelling an already-cancelled booking is a no-op
// success.
func (m *Manager) Cancel(ctx context.Context, bookingID uuid.UUID, requesterEmail string) (*booking_models.Booking, error) {
	booking, err := m.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// Ownership never changes after creation, so checking it outside the
	// cancel transaction is safe.
	if booking.Email != requesterEmail {
		logger.WarnLogger.Warnf("Identity %s attempted to cancel booking %s owned by %s",
			requesterEmail, bookingID, booking.Email)
		return nil, ErrForbidden
	}

	cancelled, err := m.store.CancelBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Booking %s cancelled by %s", bookingID, requesterEmail)
	return cancelled, nil
}

// MyBookings lists the requester's bookings.
func (m *Manager) MyBookings(ctx context.Context, email string) ([]booking_models.Booking, error) {
	return m.store.ListBookingsByEmail(ctx, email)
}

// AllBookings lists every booking in the system (admin view).
func (m *Manager) AllBookings(ctx context.Context) ([]booking_models.Booking, error) {
	return m.store.ListAllBookings(ctx)
}

// StartPurgeSweep launches the background retention task: every interval it
// deletes bookings whose date has passed. Failures are logged and
// swallowed; the sweep never runs inside a request path and never touches
// slot state. It stops when ctx is cancelled.
func (m *Manager) StartPurgeSweep(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.store.PurgeBookingsBefore(ctx, shared_models.Today()); err != nil {
					logger.ErrorLogger.Errorf("Booking purge sweep failed: %v", err)
				}
			}
		}
	}()
}
