package domain

import (
	"context"
	"time"
)

// RSVPStatus is a closed set of attendance intents.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPNotGoing RSVPStatus = "not_going"
	// RSVPWaitlisted marks an over-capacity registration accepted because
	// the event runs a waiting list. It does not count toward occupancy.
	RSVPWaitlisted RSVPStatus = "waitlisted"
)

// Valid reports whether s is a status a caller may request directly.
// Waitlisted is assigned by the capacity gate, never by the caller.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPGoing, RSVPMaybe, RSVPNotGoing:
		return true
	}
	return false
}

// Occupies reports whether an RSVP with this status counts toward the
// event's capacity ceiling.
func (s RSVPStatus) Occupies() bool { return s == RSVPGoing }

// RSVP is the authoritative per-(event,user) attendance record. Exactly
// one exists per pair; updates overwrite in place and cancellation
// deletes the row outright.
// swagger:model RSVP
type RSVP struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	UserID     string     `json:"user_id"`
	Status     RSVPStatus `json:"status"`
	GuestCount int        `json:"guest_count"`
	Notes      string     `json:"notes,omitempty"`
	RSVPAt     time.Time  `json:"rsvp_at"`
}

// HeadCount is the occupancy contribution of this RSVP: the attendee
// plus their guests.
func (r *RSVP) HeadCount() int { return 1 + r.GuestCount }

// RSVPRepository defines storage operations for RSVP records.
type RSVPRepository interface {
	Upsert(ctx context.Context, rsvp *RSVP) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	ListByEventID(ctx context.Context, eventID string) ([]*RSVP, error)
	Delete(ctx context.Context, eventID, userID string) error
}

// RSVPSummary aggregates an event's RSVPs by status.
// swagger:model RSVPSummary
type RSVPSummary struct {
	Going       int `json:"going"`
	Maybe       int `json:"maybe"`
	NotGoing    int `json:"not_going"`
	Waitlisted  int `json:"waitlisted"`
	TotalGuests int `json:"total_guests"`
}

// RegistrationService defines the registration operations exposed to the
// delivery layer.
type RegistrationService interface {
	// UpsertRSVP records or overwrites the user's RSVP. A "going" request
	// may come back with status "waitlisted" when the event is full and
	// runs a waiting list.
	UpsertRSVP(ctx context.Context, eventID, userID string, status RSVPStatus, guestCount int, notes string) (*RSVP, error)
	// RemoveRSVP deletes the user's RSVP. Fails with ErrNotFound if none exists.
	RemoveRSVP(ctx context.Context, eventID, userID string) error
	GetRSVP(ctx context.Context, eventID, userID string) (*RSVP, error)
	GetRSVPSummary(ctx context.Context, eventID string) (*RSVPSummary, error)
	GetWaitlist(ctx context.Context, eventID string) ([]*RSVP, error)
}
