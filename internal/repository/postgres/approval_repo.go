package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gatherly/internal/domain"
)

type approvalRepository struct {
	DB *sql.DB
}

func NewApprovalRepository(db *sql.DB) domain.ApprovalRepository {
	return &approvalRepository{
		DB: db,
	}
}

const approvalColumns = `id, event_id, user_id, status, guest_count, message, requested_at, reviewed_at, reviewed_by, review_notes`

func (r *approvalRepository) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	query := `
		INSERT INTO approval_requests (event_id, user_id, status, guest_count, message, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, req.EventID, req.UserID, req.Status, req.GuestCount, req.Message, req.RequestedAt).
		Scan(&req.ID)
}

func (r *approvalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *approvalRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE event_id = $1 AND user_id = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *approvalRepository) ListByEventAndStatus(ctx context.Context, eventID string, status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalColumns + `
		FROM approval_requests
		WHERE event_id = $1 AND status = $2
		ORDER BY requested_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*domain.ApprovalRequest
	for rows.Next() {
		req, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []*domain.ApprovalRequest{}
	}
	return reqs, nil
}

func (r *approvalRepository) Resubmit(ctx context.Context, id string, guestCount int, message string, requestedAt time.Time) (*domain.ApprovalRequest, error) {
	query := `
		UPDATE approval_requests
		SET status = $2,
		    guest_count = $3,
		    message = $4,
		    requested_at = $5,
		    reviewed_at = NULL,
		    reviewed_by = NULL,
		    review_notes = ''
		WHERE id = $1
		RETURNING ` + approvalColumns + `
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id, domain.ApprovalPending, guestCount, message, requestedAt))
}

func (r *approvalRepository) Review(ctx context.Context, id string, status domain.ApprovalStatus, reviewedBy, notes string, reviewedAt time.Time) (*domain.ApprovalRequest, error) {
	query := `
		UPDATE approval_requests
		SET status = $2,
		    reviewed_at = $3,
		    reviewed_by = $4,
		    review_notes = $5
		WHERE id = $1
		RETURNING ` + approvalColumns + `
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id, status, reviewedAt, reviewedBy, notes))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *approvalRepository) scanRow(row rowScanner) (*domain.ApprovalRequest, error) {
	req := &domain.ApprovalRequest{}
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullString
	err := row.Scan(&req.ID, &req.EventID, &req.UserID, &req.Status, &req.GuestCount, &req.Message,
		&req.RequestedAt, &reviewedAt, &reviewedBy, &req.ReviewNotes)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	if reviewedBy.Valid {
		req.ReviewedBy = reviewedBy.String
	}
	return req, nil
}

func (r *approvalRepository) scanOne(row *sql.Row) (*domain.ApprovalRequest, error) {
	req, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}
