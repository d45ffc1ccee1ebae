package domain

import (
	"context"
	"time"
)

// Event is the calendar event a registration belongs to. Events are owned
// by the calendar subsystem; this module only reads them.
// swagger:model Event
type Event struct {
	ID               string    `json:"id"`
	CalendarID       string    `json:"calendar_id"`
	Name             string    `json:"name"`
	CreatorID        string    `json:"creator_id"`
	OwnerID          string    `json:"owner_id"`
	IsPublic         bool      `json:"is_public"`
	RequiresApproval bool      `json:"requires_approval"`
	HasCapacityLimit bool      `json:"has_capacity_limit"`
	Capacity         int       `json:"capacity"`
	WaitingList      bool      `json:"waiting_list"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
}

// IsOrganizer reports whether userID is the event creator or the owner of
// the calendar the event belongs to. Organizers bypass the approval and
// capacity gates on their own membership.
func (e *Event) IsOrganizer(userID string) bool {
	return userID != "" && (userID == e.CreatorID || userID == e.OwnerID)
}

// EventRepository is the read-only view of the event collaborator.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
}
