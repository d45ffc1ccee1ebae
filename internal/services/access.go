package services

import (
	"context"
	"errors"
	"fmt"

	"gatherly/internal/domain"
)

// AccessPolicy decides whether an actor may write a registration on an
// event at all. It is pure read-side: it never mutates state.
type AccessPolicy struct {
	invitationRepo domain.InvitationRepository
	approvalRepo   domain.ApprovalRepository
}

func NewAccessPolicy(invitationRepo domain.InvitationRepository, approvalRepo domain.ApprovalRepository) *AccessPolicy {
	return &AccessPolicy{
		invitationRepo: invitationRepo,
		approvalRepo:   approvalRepo,
	}
}

// CanWriteRegistration applies the access rules in order: organizers are
// always allowed; private events require an accepted invitation;
// approval-required events gate "going" on an approved request, with a
// distinct denial per request state.
func (p *AccessPolicy) CanWriteRegistration(ctx context.Context, event *domain.Event, actorID string, target domain.RSVPStatus) error {
	if actorID == "" {
		return domain.ErrUnauthorized
	}
	if event.IsOrganizer(actorID) {
		return nil
	}

	if !event.IsPublic {
		status, err := p.invitationRepo.GetStatus(ctx, event.ID, actorID)
		if err != nil {
			return fmt.Errorf("get invitation status: %w", err)
		}
		if status != domain.InvitationAccepted {
			return domain.ErrAccessDenied
		}
	}

	if event.RequiresApproval && target == domain.RSVPGoing {
		req, err := p.approvalRepo.GetByEventAndUser(ctx, event.ID, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrApprovalRequired
			}
			return fmt.Errorf("get approval request: %w", err)
		}
		switch req.Status {
		case domain.ApprovalApproved:
			return nil
		case domain.ApprovalPending:
			return domain.ErrApprovalPending
		case domain.ApprovalRejected:
			return domain.ErrApprovalRejected
		default:
			return domain.ErrApprovalRequired
		}
	}

	return nil
}
