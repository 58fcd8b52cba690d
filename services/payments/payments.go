// Package payments tracks the payment lifecycle of bookings. The capture
// flow itself belongs to the external gateway; this service only records
// its outcome. No operation here ever touches slot state: a slot is held by
// a Confirmed booking regardless of how payment went.
package payments

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
// booking whose payment it is confirming.
var ErrForbidden = errors.New("payment action not allowed for this identity")

// Tracker advances paymentStatus along Pending -> Paid -> Refunded, or
// Pending -> Failed. No backward transitions.
type Tracker struct {
	store storage.Store
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store storage.Store) *Tracker {
	return &Tracker{store: store}
}

// Confirm records a successful capture: Pending -> Paid with the gateway
// transaction id and a payment timestamp. Only the booking's owner may
// confirm. storage.ErrInvalidPaymentState when the booking is not Pending.
func (t *Tracker) Confirm(ctx context.Context, bookingID uuid.UUID, transactionID string, amount float64, requesterEmail string) (*booking_models.Booking, error) {
	booking, err := t.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Email != requesterEmail {
		logger.WarnLogger.Warnf("Identity %s attempted to confirm payment for booking %s owned by %s",
			requesterEmail, bookingID, booking.Email)
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	updated, err := t.store.CompareAndSetPaymentStatus(ctx, bookingID,
		shared_models.PaymentStatusPending, shared_models.PaymentStatusPaid,
		&transactionID, &amount, &now)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Payment for booking %s marked Paid (txn %s)", bookingID, transactionID)
	return updated, nil
}

// Fail records a failed capture: Pending -> Failed. The booking keeps its
// slot; releasing it is a separate cancel decision.
func (t *Tracker) Fail(ctx context.Context, bookingID uuid.UUID, requesterEmail string) (*booking_models.Booking, error) {
	booking, err := t.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Email != requesterEmail {
		return nil, ErrForbidden
	}

	updated, err := t.store.CompareAndSetPaymentStatus(ctx, bookingID,
		shared_models.PaymentStatusPending, shared_models.PaymentStatusFailed,
		nil, nil, nil)
	if err != nil {
		return nil, err
	}
	logger.WarnLogger.Warnf("Payment for booking %s marked Failed", bookingID)
	return updated, nil
}

// Refund moves Paid -> Refunded (terminal). The administrative capability
// is enforced at the route boundary; refunding deliberately neither cancels
// the booking nor frees the slot.
func (t *Tracker) Refund(ctx context.Context, bookingID uuid.UUID) (*booking_models.Booking, error) {
	now := time.Now().UTC()
	updated, err := t.store.CompareAndSetPaymentStatus(ctx, bookingID,
		shared_models.PaymentStatusPaid, shared_models.PaymentStatusRefunded,
		nil, nil, &now)
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("Payment for booking %s refunded", bookingID)
	return updated, nil
}
