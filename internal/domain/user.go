package domain

import "context"

// UserProfile is the slice of the user collaborator needed for roster
// enrichment.
// swagger:model UserProfile
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// UserRepository is the read-only view of the user collaborator.
type UserRepository interface {
	GetProfile(ctx context.Context, id string) (*UserProfile, error)
}
