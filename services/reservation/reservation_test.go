package reservation_test

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/services/reservation"
	"github.com/gamio/venue-booking/services/slotgen"
	"github.com/gamio/venue-booking/storage"
	"github.com/gamio/venue-booking/storage/memory"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	os.Exit(m.Run())
}

func mustTime(t *testing.T, s string) shared_models.TimeOfDay {
	t.Helper()
	tod, err := shared_models.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

// fixture seeds one venue with a day of slots and returns everything a
// booking test needs.
type fixture struct {
	store   *memory.Store
	venue   *venue_models.Venue
	manager *reservation.Manager
	date    shared_models.Date
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	venue, err := venue_models.NewVenue("Gamio Arena", "Indiranagar", mustTime(t, "09:00"), mustTime(t, "22:00"), 60, 500)
	require.NoError(t, err)
	require.NoError(t, store.CreateVenue(context.Background(), venue))

	date := shared_models.NewDate(2026, 9, 1)
	_, err = slotgen.NewGenerator(store).Generate(context.Background(), slotgen.Request{
		VenueID: venue.ID,
		Dates:   []shared_models.Date{date},
	})
	require.NoError(t, err)

	return &fixture{
		store:   store,
		venue:   venue,
		manager: reservation.NewManager(store),
		date:    date,
	}
}

func (f *fixture) reserve(t *testing.T, timeStr, email string) *reservation.ReserveRequest {
	t.Helper()
	return &reservation.ReserveRequest{
		VenueID:  f.venue.ID,
		Date:     f.date,
		Time:     mustTime(t, timeStr),
		People:   2,
		Price:    500,
		Username: "player",
		Email:    email,
	}
}

func TestReserveHappyPath(t *testing.T) {
	f := newFixture(t)

	booking, err := f.manager.Reserve(context.Background(), *f.reserve(t, "10:00", "a@example.com"))
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, shared_models.PaymentStatusPending, booking.PaymentStatus)

	slots, err := f.store.ListSlots(context.Background(), storage.SlotFilter{VenueID: f.venue.ID, Date: &f.date})
	require.NoError(t, err)
	for _, s := range slots {
		if s.StartTime == mustTime(t, "10:00") {
			assert.True(t, s.IsBooked)
		} else {
			assert.False(t, s.IsBooked)
		}
	}
}

func TestReserveUnknownSlot(t *testing.T) {
	f := newFixture(t)

	// No slot was ever generated at 08:00.
	_, err := f.manager.Reserve(context.Background(), *f.reserve(t, "08:00", "a@example.com"))
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)
}

func TestReserveConflictIsFinal(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Reserve(context.Background(), *f.reserve(t, "10:00", "a@example.com"))
	require.NoError(t, err)

	_, err = f.manager.Reserve(context.Background(), *f.reserve(t, "10:00", "b@example.com"))
	assert.ErrorIs(t, err, storage.ErrSlotTaken)
}

// Of N goroutines racing for the same slot exactly one must win.
func TestReserveConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	const n = 50

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := *f.reserve(t, "11:00", fmt.Sprintf("user%d@example.com", i))
			_, errs[i] = f.manager.Reserve(context.Background(), req)
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, storage.ErrSlotTaken):
			conflicts++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)

	all, err := f.manager.AllBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.manager.Reserve(context.Background(), *f.reserve(t, "12:00", "a@example.com"))
	require.NoError(t, err)

	cancelled, err := f.manager.Cancel(context.Background(), booking.ID, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusCancelled, cancelled.Status)

	// Slot is free again and a different customer can take it.
	rebooked, err := f.manager.Reserve(context.Background(), *f.reserve(t, "12:00", "b@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, booking.ID, rebooked.ID)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)

	booking, err := f.manager.Reserve(context.Background(), *f.reserve(t, "12:00", "a@example.com"))
	require.NoError(t, err)

	_, err = f.manager.Cancel(context.Background(), booking.ID, "a@example.com")
	require.NoError(t, err)
	again, err := f.manager.Cancel(context.Background(), booking.ID, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared_models.BookingStatusCancelled, again.Status)
}

func TestCancelOwnershipEnforced(t *testing.T) {
	f := newFixture(t)

	booking, err := f.manager.Reserve(context.Background(), *f.reserve(t, "12:00", "a@example.com"))
	require.NoError(t, err)

	_, err = f.manager.Cancel(context.Background(), booking.ID, "intruder@example.com")
	assert.ErrorIs(t, err, reservation.ErrForbidden)

	_, err = f.manager.Cancel(context.Background(), uuid.New(), "a@example.com")
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)
}

func TestMyBookingsScopedToIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Reserve(context.Background(), *f.reserve(t, "10:00", "a@example.com"))
	require.NoError(t, err)
	_, err = f.manager.Reserve(context.Background(), *f.reserve(t, "11:00", "b@example.com"))
	require.NoError(t, err)

	mine, err := f.manager.MyBookings(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a@example.com", mine[0].Email)

	all, err := f.manager.AllBookings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// Random interleavings of reserve and cancel must keep the booked flag in
// lockstep with active bookings: a slot is booked exactly when one
// non-cancelled booking targets it.
func TestBookedFlagMatchesActiveBookings(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(1))
	times := []string{"09:00", "10:00", "11:00", "12:00"}
	emails := []string{"a@example.com", "b@example.com", "c@example.com"}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		seed := rng.Int63()
		go func() {
			defer wg.Done()
			local := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				email := emails[local.Intn(len(emails))]
				req := *f.reserve(t, times[local.Intn(len(times))], email)
				if b, err := f.manager.Reserve(context.Background(), req); err == nil && local.Intn(2) == 0 {
					_, _ = f.manager.Cancel(context.Background(), b.ID, email)
				}
			}
		}()
	}
	wg.Wait()

	slots, err := f.store.ListSlots(context.Background(), storage.SlotFilter{VenueID: f.venue.ID, Date: &f.date})
	require.NoError(t, err)
	all, err := f.manager.AllBookings(context.Background())
	require.NoError(t, err)

	activeByTime := make(map[shared_models.TimeOfDay]int)
	for _, b := range all {
		if b.Status != shared_models.BookingStatusCancelled {
			activeByTime[b.Time]++
		}
	}
	for _, count := range activeByTime {
		assert.LessOrEqual(t, count, 1, "at most one active booking per slot")
	}
	for _, s := range slots {
		assert.Equal(t, activeByTime[s.StartTime] == 1, s.IsBooked,
			"slot %s booked flag must mirror its active booking", s.StartTime)
	}
}

func TestPurgeRemovesPastBookingsOnly(t *testing.T) {
	f := newFixture(t)

	futureDate := f.date.AddDays(7)
	_, err := slotgen.NewGenerator(f.store).Generate(context.Background(), slotgen.Request{
		VenueID: f.venue.ID,
		Dates:   []shared_models.Date{futureDate},
	})
	require.NoError(t, err)

	past, err := f.manager.Reserve(context.Background(), *f.reserve(t, "10:00", "a@example.com"))
	require.NoError(t, err)

	futureReq := *f.reserve(t, "10:00", "a@example.com")
	futureReq.Date = futureDate
	future, err := f.manager.Reserve(context.Background(), futureReq)
	require.NoError(t, err)

	removed, err := f.store.PurgeBookingsBefore(context.Background(), f.date.AddDays(1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = f.store.GetBooking(context.Background(), past.ID)
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)
	kept, err := f.store.GetBooking(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, futureDate, kept.Date)
}
