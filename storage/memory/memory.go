// Package memory implements storage.Store with in-process maps guarded by
// one mutex, mirroring the transactional semantics of the postgres store.
// The engine's concurrency tests run against it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/slot_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/storage"
)

type bookingKey struct {
	venueID uuid.UUID
	date    string
	minutes int
}

// Store is an in-memory storage.Store. The single mutex makes every method
// atomic, which is exactly the guarantee the postgres transactions provide.
type Store struct {
	mu       sync.Mutex
	venues   map[uuid.UUID]venue_models.Venue
	slots    map[uuid.UUID]slot_models.Slot
	bookings map[uuid.UUID]booking_models.Booking
}

var _ storage.Store = (*Store)(nil)

// New constructs an empty Store.
func New() *Store {
	return &Store{
		venues:   make(map[uuid.UUID]venue_models.Venue),
		slots:    make(map[uuid.UUID]slot_models.Slot),
		bookings: make(map[uuid.UUID]booking_models.Booking),
	}
}

func keyOf(venueID uuid.UUID, date shared_models.Date, minutes int) bookingKey {
	return bookingKey{venueID: venueID, date: date.String(), minutes: minutes}
}

// --- Venues ---

func (s *Store) CreateVenue(_ context.Context, v *venue_models.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[v.ID] = *v
	return nil
}

func (s *Store) GetVenue(_ context.Context, id uuid.UUID) (*venue_models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, storage.ErrVenueNotFound
	}
	return &v, nil
}

func (s *Store) ListVenues(_ context.Context) ([]venue_models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]venue_models.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Slots ---

func (s *Store) InsertSlotIfAbsent(_ context.Context, slot *slot_models.Slot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.slots {
		if existing.Key() == slot.Key() {
			return false, nil
		}
	}
	s.slots[slot.ID] = *slot
	return true, nil
}

func (s *Store) GetSlotByID(_ context.Context, id uuid.UUID) (*slot_models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return nil, storage.ErrSlotNotFound
	}
	return &sl, nil
}

func (s *Store) ListSlots(_ context.Context, f storage.SlotFilter) ([]slot_models.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []slot_models.Slot
	for _, sl := range s.slots {
		if f.VenueID != uuid.Nil && sl.VenueID != f.VenueID {
			continue
		}
		if f.Date != nil && !sl.Date.Equal(*f.Date) {
			continue
		}
		out = append(out, sl)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) DeleteSlot(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.slots[id]
	if !ok {
		return storage.ErrSlotNotFound
	}
	if sl.IsBooked {
		return storage.ErrSlotBooked
	}
	delete(s.slots, id)
	return nil
}

// --- Bookings ---

func (s *Store) findSlotLocked(venueID uuid.UUID, date shared_models.Date, minutes shared_models.TimeOfDay) (uuid.UUID, bool) {
	var found uuid.UUID
	ok := false
	for id, sl := range s.slots {
		if sl.VenueID == venueID && sl.Date.Equal(date) && sl.StartTime == minutes {
			if !ok || s.slots[id].Location < s.slots[found].Location {
				found = id
				ok = true
			}
		}
	}
	return found, ok
}

func (s *Store) ReserveSlot(_ context.Context, b *booking_models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slotID, ok := s.findSlotLocked(b.VenueID, b.Date, b.Time)
	if !ok {
		return storage.ErrSlotNotFound
	}
	if s.slots[slotID].IsBooked {
		return storage.ErrSlotTaken
	}
	key := keyOf(b.VenueID, b.Date, b.Time.Minutes())
	for _, existing := range s.bookings {
		if existing.Active() && keyOf(existing.VenueID, existing.Date, existing.Time.Minutes()) == key {
			return storage.ErrSlotTaken
		}
	}

	b.SlotID = slotID
	s.bookings[b.ID] = *b
	sl := s.slots[slotID]
	sl.IsBooked = true
	s.slots[slotID] = sl
	return nil
}

func (s *Store) CancelBooking(_ context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	if b.Status == shared_models.BookingStatusCancelled {
		return &b, nil
	}

	b.Status = shared_models.BookingStatusCancelled
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b

	// Release exactly the reserved slot.
	if sl, found := s.slots[b.SlotID]; found {
		sl.IsBooked = false
		s.slots[b.SlotID] = sl
	}
	return &b, nil
}

func (s *Store) GetBooking(_ context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	return &b, nil
}

func (s *Store) ListBookingsByEmail(_ context.Context, email string) ([]booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking_models.Booking
	for _, b := range s.bookings {
		if b.Email == email {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (s *Store) ListAllBookings(_ context.Context) ([]booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking_models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sortBookings(out)
	return out, nil
}

func sortBookings(bs []booking_models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].Date.Equal(bs[j].Date) {
			return bs[j].Date.Before(bs[i].Date)
		}
		return bs[i].Time > bs[j].Time
	})
}

func (s *Store) CompareAndSetPaymentStatus(_ context.Context, id uuid.UUID, expect, next string, txnID *string, amount *float64, paidAt *time.Time) (*booking_models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	if b.PaymentStatus != expect {
		return nil, storage.ErrInvalidPaymentState
	}

	b.PaymentStatus = next
	if txnID != nil {
		b.TransactionID = txnID
	}
	if amount != nil {
		b.AmountPaid = amount
	}
	if paidAt != nil {
		b.PaymentDate = paidAt
	}
	b.UpdatedAt = time.Now().UTC()
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) PurgeBookingsBefore(_ context.Context, cutoff shared_models.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, b := range s.bookings {
		if b.Date.Before(cutoff) {
			delete(s.bookings, id)
			n++
		}
	}
	return n, nil
}
