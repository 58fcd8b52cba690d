package slotgen_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/venue_models"
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

func timePtr(t *testing.T, s string) *shared_models.TimeOfDay {
	t.Helper()
	tod := mustTime(t, s)
	return &tod
}

func newVenue(t *testing.T, store storage.Store) *venue_models.Venue {
	t.Helper()
	venue, err := venue_models.NewVenue("Gamio Arena", "Indiranagar", mustTime(t, "09:00"), mustTime(t, "22:00"), 60, 500)
	require.NoError(t, err)
	require.NoError(t, store.CreateVenue(context.Background(), venue))
	return venue
}

func TestGenerateFullDay(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)
	date := shared_models.NewDate(2026, 9, 1)

	created, err := g.Generate(context.Background(), slotgen.Request{
		VenueID: venue.ID,
		Dates:   []shared_models.Date{date},
	})
	require.NoError(t, err)

	// 09:00 through 21:00 inclusive at 60 minutes.
	require.Len(t, created, 13)
	assert.Equal(t, mustTime(t, "09:00"), created[0].StartTime)
	assert.Equal(t, mustTime(t, "21:00"), created[len(created)-1].StartTime)
	for _, s := range created {
		assert.False(t, s.IsBooked)
		assert.Equal(t, venue.ID, s.VenueID)
		assert.Equal(t, 60, s.DurationMinutes)
		assert.Equal(t, 500.0, s.Price)
		assert.Equal(t, "Indiranagar", s.Location)
	}
}

func TestGenerateDoesNotEmitPartialWindow(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)

	created, err := g.Generate(context.Background(), slotgen.Request{
		VenueID:         venue.ID,
		Dates:           []shared_models.Date{shared_models.NewDate(2026, 9, 1)},
		OpenTime:        timePtr(t, "09:00"),
		CloseTime:       timePtr(t, "10:30"),
		DurationMinutes: 60,
	})
	require.NoError(t, err)

	// Only 09:00-10:00 fits; 10:00-11:00 would spill past close.
	require.Len(t, created, 1)
	assert.Equal(t, mustTime(t, "09:00"), created[0].StartTime)
}

func TestGenerateIdempotent(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)
	req := slotgen.Request{
		VenueID: venue.ID,
		Dates:   []shared_models.Date{shared_models.NewDate(2026, 9, 1)},
	}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 13)

	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, second, "re-running over a covered range must add nothing")

	slots, err := store.ListSlots(context.Background(), storage.SlotFilter{VenueID: venue.ID})
	require.NoError(t, err)
	assert.Len(t, slots, 13)
}

func TestGenerateExtendsCoveredRange(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)
	date := shared_models.NewDate(2026, 9, 1)

	_, err := g.Generate(context.Background(), slotgen.Request{
		VenueID:   venue.ID,
		Dates:     []shared_models.Date{date},
		OpenTime:  timePtr(t, "09:00"),
		CloseTime: timePtr(t, "12:00"),
	})
	require.NoError(t, err)

	// Widening the window only fills the gap.
	extended, err := g.Generate(context.Background(), slotgen.Request{
		VenueID:   venue.ID,
		Dates:     []shared_models.Date{date},
		OpenTime:  timePtr(t, "09:00"),
		CloseTime: timePtr(t, "15:00"),
	})
	require.NoError(t, err)
	require.Len(t, extended, 3)
	assert.Equal(t, mustTime(t, "12:00"), extended[0].StartTime)
}

func TestGenerateStartDateAndDays(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)

	created, err := g.Generate(context.Background(), slotgen.Request{
		VenueID:   venue.ID,
		StartDate: shared_models.NewDate(2026, 9, 1),
		Days:      3,
	})
	require.NoError(t, err)
	assert.Len(t, created, 3*13)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)
	date := shared_models.NewDate(2026, 9, 1)

	t.Run("unknown venue", func(t *testing.T) {
		_, err := g.Generate(context.Background(), slotgen.Request{
			VenueID: uuid.New(),
			Dates:   []shared_models.Date{date},
		})
		assert.ErrorIs(t, err, storage.ErrVenueNotFound)
	})

	t.Run("no dates", func(t *testing.T) {
		_, err := g.Generate(context.Background(), slotgen.Request{VenueID: venue.ID})
		assert.ErrorIs(t, err, slotgen.ErrNoDates)
	})

	t.Run("negative duration", func(t *testing.T) {
		_, err := g.Generate(context.Background(), slotgen.Request{
			VenueID:         venue.ID,
			Dates:           []shared_models.Date{date},
			DurationMinutes: -30,
		})
		assert.ErrorIs(t, err, slotgen.ErrInvalidDuration)
	})

	t.Run("open at or past close yields nothing", func(t *testing.T) {
		created, err := g.Generate(context.Background(), slotgen.Request{
			VenueID:   venue.ID,
			Dates:     []shared_models.Date{shared_models.NewDate(2026, 9, 2)},
			OpenTime:  timePtr(t, "22:00"),
			CloseTime: timePtr(t, "09:00"),
		})
		require.NoError(t, err)
		assert.Empty(t, created)
	})
}

// A request supplying only one of the hour bounds must be rejected, never
// silently anchored to midnight or collapsed to zero slots.
func TestGenerateRejectsHalfSpecifiedHours(t *testing.T) {
	store := memory.New()
	venue := newVenue(t, store)
	g := slotgen.NewGenerator(store)
	date := shared_models.NewDate(2026, 9, 1)

	t.Run("close only", func(t *testing.T) {
		created, err := g.Generate(context.Background(), slotgen.Request{
			VenueID:   venue.ID,
			Dates:     []shared_models.Date{date},
			CloseTime: timePtr(t, "11:00"),
		})
		assert.ErrorIs(t, err, slotgen.ErrIncompleteHours)
		assert.Empty(t, created)

		slots, err := store.ListSlots(context.Background(), storage.SlotFilter{VenueID: venue.ID})
		require.NoError(t, err)
		for _, s := range slots {
			assert.GreaterOrEqual(t, s.StartTime, venue.OpeningHour,
				"no slot may start before the venue opens")
		}
	})

	t.Run("open only", func(t *testing.T) {
		_, err := g.Generate(context.Background(), slotgen.Request{
			VenueID:  venue.ID,
			Dates:    []shared_models.Date{date},
			OpenTime: timePtr(t, "09:00"),
		})
		assert.ErrorIs(t, err, slotgen.ErrIncompleteHours)
	})

	t.Run("explicit midnight open is a value", func(t *testing.T) {
		created, err := g.Generate(context.Background(), slotgen.Request{
			VenueID:   venue.ID,
			Dates:     []shared_models.Date{shared_models.NewDate(2026, 9, 3)},
			OpenTime:  timePtr(t, "00:00"),
			CloseTime: timePtr(t, "02:00"),
		})
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, mustTime(t, "00:00"), created[0].StartTime)
	})
}
