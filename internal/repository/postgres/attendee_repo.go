package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gatherly/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

func (r *attendeeRepository) Upsert(ctx context.Context, att *domain.Attendee) error {
	// Creator entries keep their type forever, even if a later sync tries
	// to write "registered" over them.
	query := `
		INSERT INTO event_attendees (event_id, user_id, attendee_type, checked_in, registered_at)
		VALUES ($1, $2, $3, false, $4)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET attendee_type = CASE
			WHEN event_attendees.attendee_type = 'creator' THEN event_attendees.attendee_type
			ELSE EXCLUDED.attendee_type
		END
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, att.EventID, att.UserID, att.Type, att.RegisteredAt).
		Scan(&att.ID)
}

func (r *attendeeRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, user_id, attendee_type, checked_in, checked_in_at, registered_at
		FROM event_attendees
		WHERE event_id = $1 AND user_id = $2
	`
	att, err := scanAttendee(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return att, nil
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, user_id, attendee_type, checked_in, checked_in_at, registered_at
		FROM event_attendees
		WHERE event_id = $1
		ORDER BY registered_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []*domain.Attendee
	for rows.Next() {
		att, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, att)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

func (r *attendeeRepository) SetCheckIn(ctx context.Context, eventID, userID string, checkedIn bool, at *time.Time) error {
	query := `
		UPDATE event_attendees
		SET checked_in = $3, checked_in_at = $4
		WHERE event_id = $1 AND user_id = $2
	`
	var checkedInAt sql.NullTime
	if at != nil {
		checkedInAt = sql.NullTime{Time: *at, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, eventID, userID, checkedIn, checkedInAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *attendeeRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `
		DELETE FROM event_attendees
		WHERE event_id = $1 AND user_id = $2
	`
	res, err := r.DB.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAttendee(row rowScanner) (*domain.Attendee, error) {
	att := &domain.Attendee{}
	var checkedInAt sql.NullTime
	err := row.Scan(&att.ID, &att.EventID, &att.UserID, &att.Type, &att.CheckedIn, &checkedInAt, &att.RegisteredAt)
	if err != nil {
		return nil, err
	}
	if checkedInAt.Valid {
		att.CheckedInAt = &checkedInAt.Time
	}
	return att, nil
}
