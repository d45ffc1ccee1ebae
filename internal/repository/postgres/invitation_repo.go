package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

// invitationRepository is a read-only view over event invitations, which
// are owned by the invitation subsystem.
type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

func (r *invitationRepository) GetStatus(ctx context.Context, eventID, userID string) (domain.InvitationStatus, error) {
	query := `
		SELECT status
		FROM event_invitations
		WHERE event_id = $1 AND user_id = $2
	`
	var status domain.InvitationStatus
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InvitationNone, nil
		}
		return domain.InvitationNone, err
	}
	return status, nil
}
