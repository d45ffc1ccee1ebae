package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"gatherly/internal/domain"
)

type registrationService struct {
	eventRepo    domain.EventRepository
	rsvpRepo     domain.RSVPRepository
	userRepo     domain.UserRepository
	roster       domain.RosterService
	access       *AccessPolicy
	capacity     *CapacityAllocator
	locks        *EventLocks
	emailService domain.EmailService
	publisher    domain.MessagePublisher
	logger       *slog.Logger
}

// NewRegistrationService wires the RSVP write path: access policy, then
// capacity (only for transitions into going), then the store write and
// the roster fan-out. All of it runs under the event's registration lock.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	userRepo domain.UserRepository,
	roster domain.RosterService,
	access *AccessPolicy,
	capacity *CapacityAllocator,
	locks *EventLocks,
	emailService domain.EmailService,
	publisher domain.MessagePublisher,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:    eventRepo,
		rsvpRepo:     rsvpRepo,
		userRepo:     userRepo,
		roster:       roster,
		access:       access,
		capacity:     capacity,
		locks:        locks,
		emailService: emailService,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *registrationService) UpsertRSVP(ctx context.Context, eventID, userID string, status domain.RSVPStatus, guestCount int, notes string) (*domain.RSVP, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if !status.Valid() || guestCount < 0 {
		return nil, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	// The access check reads approval state, so it runs under the same
	// lock as the write: a review settling between check and upsert
	// would otherwise admit a stale decision.
	if err := s.access.CanWriteRegistration(ctx, event, userID, status); err != nil {
		return nil, err
	}

	finalStatus := status
	if status == domain.RSVPGoing && !event.IsOrganizer(userID) {
		decision, err := s.capacity.CheckAdmission(ctx, event, guestCount, userID)
		if err != nil {
			return nil, err
		}
		if !decision.Admit {
			return nil, domain.ErrCapacityExceeded
		}
		if decision.WouldOverflow {
			finalStatus = domain.RSVPWaitlisted
		}
	}

	rsvp := &domain.RSVP{
		EventID:    eventID,
		UserID:     userID,
		Status:     finalStatus,
		GuestCount: guestCount,
		Notes:      notes,
		RSVPAt:     time.Now(),
	}
	if err := withWriteRetry(ctx, func() error {
		return s.rsvpRepo.Upsert(ctx, rsvp)
	}); err != nil {
		return nil, err
	}

	attType := domain.AttendeeRegistered
	if event.CreatorID == userID {
		attType = domain.AttendeeCreator
	}
	if err := s.roster.Sync(ctx, eventID, userID, finalStatus == domain.RSVPGoing, attType); err != nil {
		return nil, fmt.Errorf("sync roster: %w", err)
	}

	if finalStatus == domain.RSVPWaitlisted {
		s.notifyWaitlisted(ctx, event, userID)
	}
	s.publish(ctx, domain.TopicRSVPUpdated, rsvp)
	return rsvp, nil
}

func (s *registrationService) RemoveRSVP(ctx context.Context, eventID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	existing, err := s.rsvpRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get rsvp: %w", err)
	}

	if err := withWriteRetry(ctx, func() error {
		return s.rsvpRepo.Delete(ctx, eventID, userID)
	}); err != nil {
		return err
	}

	// Leaving "going" clears the roster entry; the creator's entry is
	// permanent and Sync leaves it alone.
	attType := domain.AttendeeRegistered
	if event.CreatorID == userID {
		attType = domain.AttendeeCreator
	}
	if err := s.roster.Sync(ctx, eventID, userID, false, attType); err != nil {
		return fmt.Errorf("sync roster: %w", err)
	}

	s.publish(ctx, domain.TopicRSVPRemoved, existing)
	return nil
}

func (s *registrationService) GetRSVP(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	rsvp, err := s.rsvpRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *registrationService) GetRSVPSummary(ctx context.Context, eventID string) (*domain.RSVPSummary, error) {
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	summary := &domain.RSVPSummary{}
	for _, r := range rsvps {
		switch r.Status {
		case domain.RSVPGoing:
			summary.Going++
			summary.TotalGuests += r.GuestCount
		case domain.RSVPMaybe:
			summary.Maybe++
		case domain.RSVPNotGoing:
			summary.NotGoing++
		case domain.RSVPWaitlisted:
			summary.Waitlisted++
		}
	}
	return summary, nil
}

func (s *registrationService) GetWaitlist(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	rsvps, err := s.rsvpRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	waitlist := []*domain.RSVP{}
	for _, r := range rsvps {
		if r.Status == domain.RSVPWaitlisted {
			waitlist = append(waitlist, r)
		}
	}
	sort.Slice(waitlist, func(i, j int) bool {
		return waitlist[i].RSVPAt.Before(waitlist[j].RSVPAt)
	})
	return waitlist, nil
}

func (s *registrationService) notifyWaitlisted(ctx context.Context, event *domain.Event, userID string) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil || profile.Email == "" {
		return
	}
	data := &domain.WaitlistNoticeEmailData{
		Email:     profile.Email,
		EventName: event.Name,
	}
	if err := s.emailService.SendWaitlistNotice(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "waitlist notice email failed",
			"event_id", event.ID, "user_id", userID, "err", err)
	}
}

func (s *registrationService) publish(ctx context.Context, topic string, rsvp *domain.RSVP) {
	if err := s.publisher.Publish(ctx, topic, rsvp); err != nil {
		s.logger.WarnContext(ctx, "publish failed", "topic", topic, "event_id", rsvp.EventID, "err", err)
	}
}
