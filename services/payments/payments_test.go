package payments_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/services/payments"
	"github.com/gamio/venue-booking/services/reservation"
	"github.com/gamio/venue-booking/services/slotgen"
	"github.com/gamio/venue-booking/storage"
	"github.com/gamio/venue-booking/storage/memory"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

const owner = "a@example.com"

func newBooking(t *testing.T, store *memory.Store) *booking_models.Booking {
	t.Helper()
	opening, err := shared_models.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	closing, err := shared_models.ParseTimeOfDay("22:00")
	require.NoError(t, err)

	venue, err := venue_models.NewVenue("Gamio Arena", "Indiranagar", opening, closing, 60, 500)
	require.NoError(t, err)
	require.NoError(t, store.CreateVenue(context.Background(), venue))

	date := shared_models.NewDate(2026, 9, 1)
	_, err = slotgen.NewGenerator(store).Generate(context.Background(), slotgen.Request{
		VenueID: venue.ID,
		Dates:   []shared_models.Date{date},
	})
	require.NoError(t, err)

	booking, err := reservation.NewManager(store).Reserve(context.Background(), reservation.ReserveRequest{
		VenueID: venue.ID,
		Date:    date,
		Time:    opening,
		People:  2,
		Price:   500,
		Email:   owner,
	})
	require.NoError(t, err)
	return booking
}

func TestConfirmPayment(t *testing.T) {
	store := memory.New()
	booking := newBooking(t, store)
	tracker := payments.NewTracker(store)

	updated, err := tracker.Confirm(context.Background(), booking.ID, "txn_123", 500, owner)
	require.NoError(t, err)
	assert.Equal(t, shared_models.PaymentStatusPaid, updated.PaymentStatus)
	require.NotNil(t, updated.TransactionID)
	assert.Equal(t, "txn_123", *updated.TransactionID)
	require.NotNil(t, updated.AmountPaid)
	assert.Equal(t, 500.0, *updated.AmountPaid)
	assert.NotNil(t, updated.PaymentDate)

	// Confirming twice is an invalid transition, not a silent overwrite.
	_, err = tracker.Confirm(context.Background(), booking.ID, "txn_456", 500, owner)
	assert.ErrorIs(t, err, storage.ErrInvalidPaymentState)
}

func TestConfirmOwnershipEnforced(t *testing.T) {
	store := memory.New()
	booking := newBooking(t, store)
	tracker := payments.NewTracker(store)

	_, err := tracker.Confirm(context.Background(), booking.ID, "txn_123", 500, "intruder@example.com")
	assert.ErrorIs(t, err, payments.ErrForbidden)

	got, err := store.GetBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.PaymentStatusPending, got.PaymentStatus)
}

func TestFailPayment(t *testing.T) {
	store := memory.New()
	booking := newBooking(t, store)
	tracker := payments.NewTracker(store)

	updated, err := tracker.Fail(context.Background(), booking.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, shared_models.PaymentStatusFailed, updated.PaymentStatus)

	// Failed is terminal for the payment; the booking still holds its slot.
	assert.Equal(t, shared_models.BookingStatusConfirmed, updated.Status)
	_, err = tracker.Confirm(context.Background(), booking.ID, "txn_123", 500, owner)
	assert.ErrorIs(t, err, storage.ErrInvalidPaymentState)
}

func TestRefundOnlyFromPaid(t *testing.T) {
	store := memory.New()
	booking := newBooking(t, store)
	tracker := payments.NewTracker(store)

	// Pending cannot be refunded.
	_, err := tracker.Refund(context.Background(), booking.ID)
	assert.ErrorIs(t, err, storage.ErrInvalidPaymentState)

	_, err = tracker.Confirm(context.Background(), booking.ID, "txn_123", 500, owner)
	require.NoError(t, err)

	refunded, err := tracker.Refund(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.PaymentStatusRefunded, refunded.PaymentStatus)

	// Refunded is terminal.
	_, err = tracker.Refund(context.Background(), booking.ID)
	assert.ErrorIs(t, err, storage.ErrInvalidPaymentState)
}

func TestRefundLeavesSlotHeld(t *testing.T) {
	store := memory.New()
	booking := newBooking(t, store)
	tracker := payments.NewTracker(store)

	_, err := tracker.Confirm(context.Background(), booking.ID, "txn_123", 500, owner)
	require.NoError(t, err)
	refunded, err := tracker.Refund(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusConfirmed, refunded.Status)

	slots, err := store.ListSlots(context.Background(), storage.SlotFilter{VenueID: booking.VenueID, Date: &booking.Date})
	require.NoError(t, err)
	held := false
	for _, s := range slots {
		if s.StartTime == booking.Time {
			held = s.IsBooked
		}
	}
	assert.True(t, held, "refund must not free the slot")
}
