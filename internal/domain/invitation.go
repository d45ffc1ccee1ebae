package domain

import "context"

// InvitationStatus is the state of a user's invitation to an event, as
// reported by the invitation collaborator.
type InvitationStatus string

const (
	InvitationAccepted InvitationStatus = "accepted"
	InvitationPending  InvitationStatus = "pending"
	InvitationDeclined InvitationStatus = "declined"
	InvitationNone     InvitationStatus = "none"
)

// InvitationRepository is the read-only view of the invitation
// collaborator. Invitation delivery and CRUD live outside this module.
type InvitationRepository interface {
	GetStatus(ctx context.Context, eventID, userID string) (InvitationStatus, error)
}
