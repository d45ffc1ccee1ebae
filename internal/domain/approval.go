package domain

import (
	"context"
	"time"
)

// ApprovalStatus is the state of an approval request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ReviewAction is an organizer's decision on a pending request.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

// ApprovalRequest gates a "going" RSVP on events that require approval.
// One request exists per (event, user); resubmitting a rejected request
// overwrites it back to pending rather than appending history.
// swagger:model ApprovalRequest
type ApprovalRequest struct {
	ID          string         `json:"id"`
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id"`
	Status      ApprovalStatus `json:"status"`
	GuestCount  int            `json:"guest_count"`
	Message     string         `json:"message,omitempty"`
	RequestedAt time.Time      `json:"requested_at"`
	ReviewedAt  *time.Time     `json:"reviewed_at,omitempty"`
	ReviewedBy  string         `json:"reviewed_by,omitempty"`
	ReviewNotes string         `json:"review_notes,omitempty"`
}

// HeadCount is the occupancy this request would contribute if approved.
func (a *ApprovalRequest) HeadCount() int { return 1 + a.GuestCount }

// ApprovalRepository defines storage operations for approval requests.
type ApprovalRepository interface {
	Create(ctx context.Context, req *ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*ApprovalRequest, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*ApprovalRequest, error)
	ListByEventAndStatus(ctx context.Context, eventID string, status ApprovalStatus) ([]*ApprovalRequest, error)
	// Resubmit resets a rejected request back to pending with fresh
	// request fields and cleared review fields.
	Resubmit(ctx context.Context, id string, guestCount int, message string, requestedAt time.Time) (*ApprovalRequest, error)
	// Review records the organizer's decision on the request.
	Review(ctx context.Context, id string, status ApprovalStatus, reviewedBy, notes string, reviewedAt time.Time) (*ApprovalRequest, error)
}

// ApprovalService defines the approval workflow operations.
type ApprovalService interface {
	RequestApproval(ctx context.Context, eventID, userID, message string, guestCount int) (*ApprovalRequest, error)
	ReviewApproval(ctx context.Context, requestID, reviewerID string, action ReviewAction, notes string) (*ApprovalRequest, error)
	GetApprovalStatus(ctx context.Context, eventID, userID string) (*ApprovalRequest, error)
}
