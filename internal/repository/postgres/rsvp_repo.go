package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO event_rsvps (event_id, user_id, status, guest_count, notes, rsvp_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status,
		              guest_count = EXCLUDED.guest_count,
		              notes = EXCLUDED.notes,
		              rsvp_at = EXCLUDED.rsvp_at
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.GuestCount, rsvp.Notes, rsvp.RSVPAt).
		Scan(&rsvp.ID)
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, status, guest_count, notes, rsvp_at
		FROM event_rsvps
		WHERE event_id = $1 AND user_id = $2
	`
	rsvp := &domain.RSVP{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.GuestCount, &rsvp.Notes, &rsvp.RSVPAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, status, guest_count, notes, rsvp_at
		FROM event_rsvps
		WHERE event_id = $1
		ORDER BY rsvp_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []*domain.RSVP
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.Status, &rsvp.GuestCount, &rsvp.Notes, &rsvp.RSVPAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}

func (r *rsvpRepository) Delete(ctx context.Context, eventID, userID string) error {
	query := `
		DELETE FROM event_rsvps
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
