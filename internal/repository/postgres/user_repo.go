package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gatherly/internal/domain"
)

// userRepository is a read-only view over the users table, which is
// owned by the profile subsystem. Only the fields needed for roster
// enrichment and notifications are read.
type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	query := `
		SELECT id, name, email, COALESCE(image, '')
		FROM users
		WHERE id = $1
	`
	profile := &domain.UserProfile{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&profile.ID, &profile.Name, &profile.Email, &profile.Image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}
