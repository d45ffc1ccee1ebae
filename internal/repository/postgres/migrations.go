package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Connect establishes a connection to PostgreSQL with retries.
func Connect(databaseURL string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			log.Printf("Failed to open database: %v, retrying in 2s...", err)
			time.Sleep(2 * time.Second)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return db, nil
		}

		log.Printf("Failed to ping database: %v, retrying in 2s...", err)
		time.Sleep(2 * time.Second)
	}

	return nil, fmt.Errorf("could not connect to database after 30 attempts: %w", err)
}

// RunMigrations creates the tables this module owns. The events,
// event_invitations and users tables belong to the calendar, invitation
// and profile subsystems respectively and are not created here.
func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		`CREATE TABLE IF NOT EXISTS event_rsvps (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_id UUID NOT NULL,
			user_id UUID NOT NULL,
			status VARCHAR(16) NOT NULL,
			guest_count INTEGER NOT NULL DEFAULT 0 CHECK (guest_count >= 0),
			notes TEXT NOT NULL DEFAULT '',
			rsvp_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (event_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_rsvps_event_status ON event_rsvps (event_id, status)`,
		`CREATE TABLE IF NOT EXISTS approval_requests (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_id UUID NOT NULL,
			user_id UUID NOT NULL,
			status VARCHAR(16) NOT NULL,
			guest_count INTEGER NOT NULL DEFAULT 0 CHECK (guest_count >= 0),
			message TEXT NOT NULL DEFAULT '',
			requested_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			reviewed_at TIMESTAMPTZ,
			reviewed_by UUID,
			review_notes TEXT NOT NULL DEFAULT '',
			UNIQUE (event_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approval_requests_event_status ON approval_requests (event_id, status)`,
		`CREATE TABLE IF NOT EXISTS event_attendees (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			event_id UUID NOT NULL,
			user_id UUID NOT NULL,
			attendee_type VARCHAR(16) NOT NULL,
			checked_in BOOLEAN NOT NULL DEFAULT false,
			checked_in_at TIMESTAMPTZ,
			registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (event_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_attendees_event ON event_attendees (event_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
