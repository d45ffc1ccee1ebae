package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type approvalService struct {
	eventRepo    domain.EventRepository
	approvalRepo domain.ApprovalRepository
	rsvpRepo     domain.RSVPRepository
	userRepo     domain.UserRepository
	roster       domain.RosterService
	capacity     *CapacityAllocator
	locks        *EventLocks
	emailService domain.EmailService
	publisher    domain.MessagePublisher
	logger       *slog.Logger
}

// NewApprovalService wires the approval workflow. locks must be the same
// EventLocks instance the registration service uses, so approval reviews
// and direct RSVPs serialize against each other per event.
func NewApprovalService(
	eventRepo domain.EventRepository,
	approvalRepo domain.ApprovalRepository,
	rsvpRepo domain.RSVPRepository,
	userRepo domain.UserRepository,
	roster domain.RosterService,
	capacity *CapacityAllocator,
	locks *EventLocks,
	emailService domain.EmailService,
	publisher domain.MessagePublisher,
	logger *slog.Logger,
) domain.ApprovalService {
	return &approvalService{
		eventRepo:    eventRepo,
		approvalRepo: approvalRepo,
		rsvpRepo:     rsvpRepo,
		userRepo:     userRepo,
		roster:       roster,
		capacity:     capacity,
		locks:        locks,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *approvalService) RequestApproval(ctx context.Context, eventID, userID, message string, guestCount int) (*domain.ApprovalRequest, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if guestCount < 0 {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.RequiresApproval {
		return nil, domain.ErrInvalidState
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	existing, err := s.approvalRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	if existing != nil && existing.Status != domain.ApprovalRejected {
		// Pending and approved requests may not be resubmitted.
		return nil, domain.ErrAlreadyExists
	}

	// Provisional capacity check so requests that could never be approved
	// fail fast at submission.
	decision, err := s.capacity.CheckAdmission(ctx, event, guestCount, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Admit {
		return nil, domain.ErrCapacityExceeded
	}

	now := time.Now()
	var req *domain.ApprovalRequest
	if existing != nil {
		// Rejected requests re-enter pending in place; history is a single
		// slot, not an append log.
		err = withWriteRetry(ctx, func() error {
			req, err = s.approvalRepo.Resubmit(ctx, existing.ID, guestCount, message, now)
			return err
		})
		if err != nil {
			return nil, err
		}
	} else {
		req = &domain.ApprovalRequest{
			EventID:     eventID,
			UserID:      userID,
			Status:      domain.ApprovalPending,
			GuestCount:  guestCount,
			Message:     message,
			RequestedAt: now,
		}
		if err := withWriteRetry(ctx, func() error {
			return s.approvalRepo.Create(ctx, req)
		}); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, domain.TopicApprovalRequested, req)
	return req, nil
}

func (s *approvalService) ReviewApproval(ctx context.Context, requestID, reviewerID string, action domain.ReviewAction, notes string) (*domain.ApprovalRequest, error) {
	if reviewerID == "" {
		return nil, domain.ErrUnauthorized
	}
	if action != domain.ReviewApprove && action != domain.ReviewReject {
		return nil, domain.ErrInvalidInput
	}

	req, err := s.approvalRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsOrganizer(reviewerID) {
		return nil, domain.ErrForbidden
	}

	unlock := s.locks.Lock(event.ID)
	defer unlock()

	// Re-read under the lock: a concurrent review may have settled it.
	req, err = s.approvalRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	if req.Status != domain.ApprovalPending {
		return nil, domain.ErrInvalidState
	}

	now := time.Now()

	if action == domain.ReviewReject {
		var reviewed *domain.ApprovalRequest
		err = withWriteRetry(ctx, func() error {
			reviewed, err = s.approvalRepo.Review(ctx, requestID, domain.ApprovalRejected, reviewerID, notes, now)
			return err
		})
		if err != nil {
			return nil, err
		}
		s.notifyDecision(ctx, event, reviewed)
		s.publish(ctx, domain.TopicApprovalReviewed, reviewed)
		return reviewed, nil
	}

	// Capacity may have filled since the request was made; failing here
	// leaves the request pending so the reviewer can reconsider.
	decision, err := s.capacity.CheckAdmission(ctx, event, req.GuestCount, req.UserID)
	if err != nil {
		return nil, err
	}
	if !decision.Admit {
		return nil, domain.ErrCapacityExceeded
	}

	var reviewed *domain.ApprovalRequest
	err = withWriteRetry(ctx, func() error {
		reviewed, err = s.approvalRepo.Review(ctx, requestID, domain.ApprovalApproved, reviewerID, notes, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	status := domain.RSVPGoing
	if decision.WouldOverflow {
		status = domain.RSVPWaitlisted
	}
	rsvp := &domain.RSVP{
		EventID:    event.ID,
		UserID:     req.UserID,
		Status:     status,
		GuestCount: req.GuestCount,
		RSVPAt:     now,
	}
	if err := withWriteRetry(ctx, func() error {
		return s.rsvpRepo.Upsert(ctx, rsvp)
	}); err != nil {
		return nil, err
	}

	if status == domain.RSVPGoing {
		attType := domain.AttendeeRegistered
		if event.CreatorID == req.UserID {
			attType = domain.AttendeeCreator
		}
		if err := s.roster.Sync(ctx, event.ID, req.UserID, true, attType); err != nil {
			return nil, fmt.Errorf("sync roster: %w", err)
		}
	}

	s.notifyDecision(ctx, event, reviewed)
	s.publish(ctx, domain.TopicApprovalReviewed, reviewed)
	return reviewed, nil
}

func (s *approvalService) GetApprovalStatus(ctx context.Context, eventID, userID string) (*domain.ApprovalRequest, error) {
	req, err := s.approvalRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	return req, nil
}

// notifyDecision emails the requester about the review outcome.
// Best-effort: notification failure never fails the review.
func (s *approvalService) notifyDecision(ctx context.Context, event *domain.Event, req *domain.ApprovalRequest) {
	profile, err := s.userRepo.GetProfile(ctx, req.UserID)
	if err != nil || profile.Email == "" {
		return
	}
	data := &domain.ApprovalDecisionEmailData{
		Email:       profile.Email,
		EventName:   event.Name,
		Approved:    req.Status == domain.ApprovalApproved,
		ReviewNotes: req.ReviewNotes,
	}
	if err := s.emailService.SendApprovalDecision(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "approval decision email failed",
			"event_id", event.ID, "user_id", req.UserID, "err", err)
	}
}

func (s *approvalService) publish(ctx context.Context, topic string, req *domain.ApprovalRequest) {
	if err := s.publisher.Publish(ctx, topic, req); err != nil {
		s.logger.WarnContext(ctx, "publish failed", "topic", topic, "event_id", req.EventID, "err", err)
	}
}
