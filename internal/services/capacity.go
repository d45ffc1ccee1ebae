package services

import (
	"context"
	"fmt"

	"gatherly/internal/domain"
)

// CapacityAllocator computes event occupancy against the capacity
// ceiling and decides admit / reject / waitlist. Both the direct RSVP
// path and the approval path go through ComputeOccupancy, so the two can
// never disagree about who is already counted.
//
// Callers must hold the event's registration lock for the full
// read-check-write sequence; the allocator itself only reads.
type CapacityAllocator struct {
	rsvpRepo     domain.RSVPRepository
	approvalRepo domain.ApprovalRepository
}

// AdmissionDecision is the outcome of a capacity check. WouldOverflow is
// set whenever admitting the candidate would push occupancy past the
// ceiling; Admit is false only when the event also has no waiting list.
type AdmissionDecision struct {
	Admit         bool
	WouldOverflow bool
}

func NewCapacityAllocator(rsvpRepo domain.RSVPRepository, approvalRepo domain.ApprovalRepository) *CapacityAllocator {
	return &CapacityAllocator{
		rsvpRepo:     rsvpRepo,
		approvalRepo: approvalRepo,
	}
}

// ComputeOccupancy returns the event's current head count: every "going"
// RSVP contributes 1+guests, and every approved-but-not-yet-RSVP'd
// request contributes the same provisionally. excludeUserID removes the
// candidate's own prior contribution so repeated edits by one user don't
// double-count.
func (c *CapacityAllocator) ComputeOccupancy(ctx context.Context, eventID, excludeUserID string) (int, error) {
	rsvps, err := c.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list rsvps: %w", err)
	}

	occupancy := 0
	rsvped := make(map[string]struct{})
	for _, r := range rsvps {
		// Any RSVP row settles the user's contribution: going counts,
		// every other status (including waitlisted) counts zero. An
		// approved request holds a seat only until the RSVP exists.
		rsvped[r.UserID] = struct{}{}
		if !r.Status.Occupies() || r.UserID == excludeUserID {
			continue
		}
		occupancy += r.HeadCount()
	}

	approved, err := c.approvalRepo.ListByEventAndStatus(ctx, eventID, domain.ApprovalApproved)
	if err != nil {
		return 0, fmt.Errorf("list approved requests: %w", err)
	}
	for _, req := range approved {
		if req.UserID == excludeUserID {
			continue
		}
		if _, ok := rsvped[req.UserID]; ok {
			continue
		}
		occupancy += req.HeadCount()
	}

	return occupancy, nil
}

// CheckAdmission decides whether a candidate contributing 1+guestCount
// heads fits under the event's ceiling. Events without a capacity limit
// always admit.
func (c *CapacityAllocator) CheckAdmission(ctx context.Context, event *domain.Event, guestCount int, excludeUserID string) (AdmissionDecision, error) {
	if !event.HasCapacityLimit {
		return AdmissionDecision{Admit: true}, nil
	}

	occupancy, err := c.ComputeOccupancy(ctx, event.ID, excludeUserID)
	if err != nil {
		return AdmissionDecision{}, err
	}

	if occupancy+1+guestCount <= event.Capacity {
		return AdmissionDecision{Admit: true}, nil
	}
	return AdmissionDecision{Admit: event.WaitingList, WouldOverflow: true}, nil
}
