// Package postgres implements storage.Store on pgx. Reserve and cancel run
// inside one transaction with a row lock on the slot, so the booking insert
// and the is_booked flip are never observable as separate steps.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamio/venue-booking/logger"
	"github.com/gamio/venue-booking/models/booking_models"
	"github.com/gamio/venue-booking/models/shared_models"
	"github.com/gamio/venue-booking/models/slot_models"
	"github.com/gamio/venue-booking/models/venue_models"
	"github.com/gamio/venue-booking/storage"
)

// Store implements storage.Store on a pgx pool.
type Store struct {
	db *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New constructs a Store.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- Venues ---

func (s *Store) CreateVenue(ctx context.Context, v *venue_models.Venue) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO venues (id, name, location, opening_minutes, closing_minutes, slot_duration_minutes, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.Name, v.Location, v.OpeningHour.Minutes(), v.ClosingHour.Minutes(),
		v.SlotDurationMinutes, v.Price, v.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert venue: %w", err)
	}
	return nil
}

func (s *Store) GetVenue(ctx context.Context, id uuid.UUID) (*venue_models.Venue, error) {
	var v venue_models.Venue
	var opening, closing int
	err := s.db.QueryRow(ctx,
		`SELECT id, name, location, opening_minutes, closing_minutes, slot_duration_minutes, price, created_at
		 FROM venues WHERE id = $1`, id,
	).Scan(&v.ID, &v.Name, &v.Location, &opening, &closing, &v.SlotDurationMinutes, &v.Price, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrVenueNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	v.OpeningHour = shared_models.TimeOfDay(opening)
	v.ClosingHour = shared_models.TimeOfDay(closing)
	return &v, nil
}

func (s *Store) ListVenues(ctx context.Context) ([]venue_models.Venue, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, location, opening_minutes, closing_minutes, slot_duration_minutes, price, created_at
		 FROM venues ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []venue_models.Venue
	for rows.Next() {
		var v venue_models.Venue
		var opening, closing int
		if err := rows.Scan(&v.ID, &v.Name, &v.Location, &opening, &closing, &v.SlotDurationMinutes, &v.Price, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		v.OpeningHour = shared_models.TimeOfDay(opening)
		v.ClosingHour = shared_models.TimeOfDay(closing)
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// --- Slots ---

func (s *Store) InsertSlotIfAbsent(ctx context.Context, slot *slot_models.Slot) (bool, error) {
	tag, err := s.db.Exec(ctx,
		`INSERT INTO slots (id, venue_id, date, start_minutes, duration_minutes, price, location, is_booked, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT ON CONSTRAINT slots_natural_key DO NOTHING`,
		slot.ID, slot.VenueID, slot.Date.Time(), slot.StartTime.Minutes(),
		slot.DurationMinutes, slot.Price, slot.Location, slot.IsBooked, slot.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert slot: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanSlot(row pgx.Row) (*slot_models.Slot, error) {
	var sl slot_models.Slot
	var date time.Time
	var start int
	err := row.Scan(&sl.ID, &sl.VenueID, &date, &start, &sl.DurationMinutes,
		&sl.Price, &sl.Location, &sl.IsBooked, &sl.CreatedAt)
	if err != nil {
		return nil, err
	}
	sl.Date = shared_models.DateOf(date)
	sl.StartTime = shared_models.TimeOfDay(start)
	return &sl, nil
}

const slotColumns = `id, venue_id, date, start_minutes, duration_minutes, price, location, is_booked, created_at`

func (s *Store) GetSlotByID(ctx context.Context, id uuid.UUID) (*slot_models.Slot, error) {
	slot, err := scanSlot(s.db.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM slots WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

func (s *Store) ListSlots(ctx context.Context, f storage.SlotFilter) ([]slot_models.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots`
	var conds []string
	var args []any
	if f.VenueID != uuid.Nil {
		args = append(args, f.VenueID)
		conds = append(conds, fmt.Sprintf("venue_id = $%d", len(args)))
	}
	if f.Date != nil {
		args = append(args, f.Date.Time())
		conds = append(conds, fmt.Sprintf("date = $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY date, start_minutes"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []slot_models.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}

func (s *Store) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	// The conditional delete waits on any in-flight reserve holding the
	// row lock, so it can never remove a slot that just became booked.
	tag, err := s.db.Exec(ctx, `DELETE FROM slots WHERE id = $1 AND is_booked = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var booked bool
	err = s.db.QueryRow(ctx, `SELECT is_booked FROM slots WHERE id = $1`, id).Scan(&booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("delete slot recheck: %w", err)
	}
	if booked {
		return storage.ErrSlotBooked
	}
	return storage.ErrSlotNotFound
}

// --- Bookings ---

const bookingColumns = `id, venue_id, slot_id, date, time_minutes, people, price, username, email,
	status, payment_status, transaction_id, amount_paid, payment_date, created_at, updated_at`

func scanBooking(row pgx.Row) (*booking_models.Booking, error) {
	var b booking_models.Booking
	var date time.Time
	var minutes int
	err := row.Scan(&b.ID, &b.VenueID, &b.SlotID, &date, &minutes, &b.People, &b.Price,
		&b.Username, &b.Email, &b.Status, &b.PaymentStatus,
		&b.TransactionID, &b.AmountPaid, &b.PaymentDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Date = shared_models.DateOf(date)
	b.Time = shared_models.TimeOfDay(minutes)
	return &b, nil
}

func (s *Store) ReserveSlot(ctx context.Context, b *booking_models.Booking) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the slot row first. Concurrent reserves for the same key
	// serialise here; the loser sees is_booked = true.
	var slotID uuid.UUID
	var booked bool
	err = tx.QueryRow(ctx,
		`SELECT id, is_booked FROM slots
		 WHERE venue_id = $1 AND date = $2 AND start_minutes = $3
		 ORDER BY location LIMIT 1
		 FOR UPDATE`,
		b.VenueID, b.Date.Time(), b.Time.Minutes(),
	).Scan(&slotID, &booked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = storage.ErrSlotNotFound
			return err
		}
		err = fmt.Errorf("lock slot row: %w", err)
		return err
	}
	if booked {
		err = storage.ErrSlotTaken
		return err
	}
	b.SlotID = slotID

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, venue_id, slot_id, date, time_minutes, people, price, username, email,
			status, payment_status, transaction_id, amount_paid, payment_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		b.ID, b.VenueID, b.SlotID, b.Date.Time(), b.Time.Minutes(), b.People, b.Price, b.Username, b.Email,
		b.Status, b.PaymentStatus, b.TransactionID, b.AmountPaid, b.PaymentDate, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			err = storage.ErrSlotTaken
			return err
		}
		err = fmt.Errorf("insert booking: %w", err)
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE slots SET is_booked = TRUE WHERE id = $1`, slotID)
	if err != nil {
		err = fmt.Errorf("hold slot: %w", err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit reserve: %w", err)
		return err
	}
	return nil
}

func (s *Store) CancelBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	b, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = storage.ErrBookingNotFound
			return nil, err
		}
		err = fmt.Errorf("lock booking row: %w", err)
		return nil, err
	}

	if b.Status == shared_models.BookingStatusCancelled {
		// Idempotent: already cancelled is a success, not an error.
		if err = tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit cancel noop: %w", err)
		}
		return b, nil
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		id, shared_models.BookingStatusCancelled, now)
	if err != nil {
		err = fmt.Errorf("cancel booking: %w", err)
		return nil, err
	}

	// Release exactly the slot this booking reserved, not every slot
	// sharing the key.
	_, err = tx.Exec(ctx, `UPDATE slots SET is_booked = FALSE WHERE id = $1`, b.SlotID)
	if err != nil {
		err = fmt.Errorf("release slot: %w", err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	b.Status = shared_models.BookingStatusCancelled
	b.UpdatedAt = now
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, id uuid.UUID) (*booking_models.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *Store) ListBookingsByEmail(ctx context.Context, email string) ([]booking_models.Booking, error) {
	return s.listBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE email = $1 ORDER BY date DESC, time_minutes DESC`, email)
}

func (s *Store) ListAllBookings(ctx context.Context) ([]booking_models.Booking, error) {
	return s.listBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY date DESC, time_minutes DESC`)
}

func (s *Store) listBookings(ctx context.Context, query string, args ...any) ([]booking_models.Booking, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []booking_models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (s *Store) CompareAndSetPaymentStatus(ctx context.Context, id uuid.UUID, expect, next string, txnID *string, amount *float64, paidAt *time.Time) (*booking_models.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx,
		`UPDATE bookings
		 SET payment_status = $3,
		     transaction_id = COALESCE($4, transaction_id),
		     amount_paid = COALESCE($5, amount_paid),
		     payment_date = COALESCE($6, payment_date),
		     updated_at = now()
		 WHERE id = $1 AND payment_status = $2
		 RETURNING `+bookingColumns, id, expect, next, txnID, amount, paidAt))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update payment status: %w", err)
	}

	// No row matched: distinguish missing booking from wrong state.
	if _, getErr := s.GetBooking(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, storage.ErrInvalidPaymentState
}

func (s *Store) PurgeBookingsBefore(ctx context.Context, cutoff shared_models.Date) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM bookings WHERE date < $1`, cutoff.Time())
	if err != nil {
		return 0, fmt.Errorf("purge bookings: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		logger.InfoLogger.Infof("Purged %d past bookings", n)
		return n, nil
	}
	return 0, nil
}
