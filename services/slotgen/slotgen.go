// Package slotgen derives discrete bookable windows from a venue's
// operating hours. Generation is append-only and idempotent against the
// slot natural key: re-running over an already-covered range adds nothing.
package slotgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/slot_models"
	"github.com/gamio/venue-booking/storage"
)

var (
	// ErrInvalidDuration rejects non-positive slot durations.
	ErrInvalidDuration = errors.New("slot duration must be positive")
	// ErrNoDates rejects requests carrying neither dates nor a start date.
	ErrNoDates = errors.New("either dates or a start date is required")
	// ErrIncompleteHours rejects requests supplying only one of the two
	// operating-hour bounds.
	ErrIncompleteHours = errors.New("open and close times must be supplied together")
)

// Generator produces slots for a venue.
type Generator struct {
	store storage.Store
}

// NewGenerator creates a Generator backed by the given store.
func NewGenerator(store storage.Store) *Generator {
	return &Generator{store: store}
}

// Request describes one generation run. Either Dates is an explicit list,
// or StartDate plus Days describes a contiguous run. Zero DurationMinutes,
// Price and empty Location fall back to the venue's defaults. OpenTime and
// CloseTime are pointers so an explicit midnight stays distinct from an
// absent bound: both nil falls back to the venue's hours, exactly one nil
// is rejected.
type Request struct {
	VenueID         uuid.UUID
	Dates           []shared_models.Date
	StartDate       shared_models.Date
	Days            int
	OpenTime        *shared_models.TimeOfDay
	CloseTime       *shared_models.TimeOfDay
	DurationMinutes int
	Price           float64
	Location        string
}

func (r *Request) dateList() []shared_models.Date {
	if len(r.Dates) > 0 {
		return r.Dates
	}
	days := r.Days
	if days < 1 {
		days = 1
	}
	dates := make([]shared_models.Date, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, r.StartDate.AddDays(i))
	}
	return dates
}

// Generate walks each date from OpenTime in DurationMinutes steps and
// inserts every window that fits entirely before CloseTime. Windows whose
// natural key already exists are skipped silently. It returns the slots
// created by this run.
func (g *Generator) Generate(ctx context.Context, req Request) ([]slot_models.Slot, error) {
	venue, err := g.store.GetVenue(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}

	if len(req.Dates) == 0 && req.StartDate.IsZero() {
		return nil, ErrNoDates
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = venue.SlotDurationMinutes
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	price := req.Price
	if price == 0 {
		price = venue.Price
	}
	location := req.Location
	if location == "" {
		location = venue.Location
	}
	if (req.OpenTime == nil) != (req.CloseTime == nil) {
		return nil, ErrIncompleteHours
	}
	opening := venue.OpeningHour
	closing := venue.ClosingHour
	if req.OpenTime != nil {
		opening = *req.OpenTime
		closing = *req.CloseTime
	}

	var created []slot_models.Slot
	for _, date := range req.dateList() {
		// opening >= closing yields zero slots for the date; not an error.
		for cursor := opening; ; {
			end := cursor.Add(duration)
			if end <= cursor || end > closing {
				break
			}

			slot, err := slot_models.NewSlot(req.VenueID, date, cursor, duration, price, location)
			if err != nil {
				return nil, fmt.Errorf("build slot: %w", err)
			}
			inserted, err := g.store.InsertSlotIfAbsent(ctx, slot)
			if err != nil {
				return nil, fmt.Errorf("insert slot %s: %w", slot.Key(), err)
			}
			if inserted {
				created = append(created, *slot)
			}

			cursor = end
		}
	}

	logger.InfoLogger.Infof("Generated %d slots for venue %s", len(created), req.VenueID)
	return created, nil
}
