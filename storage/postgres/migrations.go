package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS venues (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	opening_minutes INT NOT NULL,
	closing_minutes INT NOT NULL,
	slot_duration_minutes INT NOT NULL,
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS slots (
	id UUID PRIMARY KEY,
	venue_id UUID NOT NULL REFERENCES venues(id),
	date DATE NOT NULL,
	start_minutes INT NOT NULL,
	duration_minutes INT NOT NULL,
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	location TEXT NOT NULL DEFAULT '',
	is_booked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT slots_natural_key UNIQUE (venue_id, date, start_minutes, location)
);

CREATE TABLE IF NOT EXISTS bookings (
	id UUID PRIMARY KEY,
	venue_id UUID NOT NULL REFERENCES venues(id),
	slot_id UUID NOT NULL,
	date DATE NOT NULL,
	time_minutes INT NOT NULL,
	people INT NOT NULL DEFAULT 1,
	price NUMERIC(10,2) NOT NULL DEFAULT 0,
	username TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	status TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	transaction_id TEXT,
	amount_paid NUMERIC(10,2),
	payment_date TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- At most one non-cancelled booking per slot key. This backs the atomic
-- reserve even if a second writer slips past the row lock.
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_key
	ON bookings (venue_id, date, time_minutes)
	WHERE status <> 'Cancelled';

CREATE INDEX IF NOT EXISTS idx_bookings_email ON bookings(email);
CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(date);
CREATE INDEX IF NOT EXISTS idx_slots_venue_date ON slots(venue_id, date);
`

// Migrate applies the schema. Statements are idempotent so re-running on an
// existing database is safe.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
