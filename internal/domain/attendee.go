package domain

import (
	"context"
	"time"
)

// AttendeeType records how a participant landed on the roster.
type AttendeeType string

const (
	AttendeeCreator    AttendeeType = "creator"
	AttendeeInvited    AttendeeType = "invited"
	AttendeeRegistered AttendeeType = "registered"
)

// Attendee is the derived roster entry for a confirmed participant.
// Exactly one creator-type attendee exists per event and it is never
// deleted, regardless of the creator's RSVP.
// swagger:model Attendee
type Attendee struct {
	ID           string       `json:"id"`
	EventID      string       `json:"event_id"`
	UserID       string       `json:"user_id"`
	Type         AttendeeType `json:"attendee_type"`
	CheckedIn    bool         `json:"checked_in"`
	CheckedInAt  *time.Time   `json:"checked_in_at,omitempty"`
	RegisteredAt time.Time    `json:"registered_at"`
}

// AttendeeRepository defines storage operations for roster entries.
type AttendeeRepository interface {
	Upsert(ctx context.Context, att *Attendee) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Attendee, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
	SetCheckIn(ctx context.Context, eventID, userID string, checkedIn bool, at *time.Time) error
	Delete(ctx context.Context, eventID, userID string) error
}

// AttendeeWithProfile bundles a roster entry with the participant's profile.
type AttendeeWithProfile struct {
	Attendee *Attendee    `json:"attendee"`
	Profile  *UserProfile `json:"profile,omitempty"`
}

// RosterStats aggregates an event's roster.
// swagger:model RosterStats
type RosterStats struct {
	Total      int `json:"total"`
	Creators   int `json:"creators"`
	Invited    int `json:"invited"`
	Registered int `json:"registered"`
	CheckedIn  int `json:"checked_in"`
}

// RosterService keeps the attendee roster consistent with RSVPs,
// invitations and approvals, and serves roster queries.
type RosterService interface {
	// Sync is the idempotent upsert/delete mirror of an RSVP going/not-going
	// transition. Callers hold the event's registration lock; Sync never
	// removes a creator-type attendee.
	Sync(ctx context.Context, eventID, userID string, present bool, typ AttendeeType) error
	CheckIn(ctx context.Context, eventID, organizerID, userID string) (*Attendee, error)
	CheckOut(ctx context.Context, eventID, organizerID, userID string) (*Attendee, error)
	RemoveAttendee(ctx context.Context, eventID, organizerID, userID string) error
	ListAttendees(ctx context.Context, eventID string) ([]*AttendeeWithProfile, error)
	GetRosterStats(ctx context.Context, eventID string) (*RosterStats, error)
}
