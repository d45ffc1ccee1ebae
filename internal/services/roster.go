package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gatherly/internal/domain"
)

type rosterService struct {
	eventRepo    domain.EventRepository
	attendeeRepo domain.AttendeeRepository
	userRepo     domain.UserRepository
	locks        *EventLocks
	publisher    domain.MessagePublisher
	logger       *slog.Logger
}

// NewRosterService wires the derived attendee roster. Check-in/out and
// removal serialize through the shared event locks; Sync assumes the
// caller already holds the lock. Reads run unlocked, they are advisory.
func NewRosterService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	userRepo domain.UserRepository,
	locks *EventLocks,
	publisher domain.MessagePublisher,
	logger *slog.Logger,
) domain.RosterService {
	return &rosterService{
		eventRepo:    eventRepo,
		attendeeRepo: attendeeRepo,
		userRepo:     userRepo,
		locks:        locks,
		publisher:    publisher,
		logger:       logger,
	}
}

func (s *rosterService) Sync(ctx context.Context, eventID, userID string, present bool, typ domain.AttendeeType) error {
	existing, err := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get attendee: %w", err)
	}

	if present {
		if existing != nil {
			// Already on the roster; a creator entry keeps its type.
			return nil
		}
		att := &domain.Attendee{
			EventID:      eventID,
			UserID:       userID,
			Type:         typ,
			RegisteredAt: time.Now(),
		}
		return withWriteRetry(ctx, func() error {
			return s.attendeeRepo.Upsert(ctx, att)
		})
	}

	if existing == nil {
		return nil
	}
	if existing.Type == domain.AttendeeCreator {
		// The creator's roster entry is permanent.
		return nil
	}
	return withWriteRetry(ctx, func() error {
		return s.attendeeRepo.Delete(ctx, eventID, userID)
	})
}

func (s *rosterService) CheckIn(ctx context.Context, eventID, organizerID, userID string) (*domain.Attendee, error) {
	event, err := s.requireOrganizer(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	att, err := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	if att.CheckedIn {
		return nil, domain.ErrAlreadyExists
	}

	now := time.Now()
	if err := withWriteRetry(ctx, func() error {
		return s.attendeeRepo.SetCheckIn(ctx, eventID, userID, true, &now)
	}); err != nil {
		return nil, err
	}
	att.CheckedIn = true
	att.CheckedInAt = &now

	s.publish(ctx, domain.TopicAttendeeCheckedIn, event.ID, att)
	return att, nil
}

func (s *rosterService) CheckOut(ctx context.Context, eventID, organizerID, userID string) (*domain.Attendee, error) {
	event, err := s.requireOrganizer(ctx, eventID, organizerID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	att, err := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	if !att.CheckedIn {
		return nil, domain.ErrInvalidState
	}

	if err := withWriteRetry(ctx, func() error {
		return s.attendeeRepo.SetCheckIn(ctx, eventID, userID, false, nil)
	}); err != nil {
		return nil, err
	}
	att.CheckedIn = false
	att.CheckedInAt = nil

	s.publish(ctx, domain.TopicAttendeeCheckedOut, event.ID, att)
	return att, nil
}

func (s *rosterService) RemoveAttendee(ctx context.Context, eventID, organizerID, userID string) error {
	event, err := s.requireOrganizer(ctx, eventID, organizerID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	att, err := s.attendeeRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get attendee: %w", err)
	}
	if att.Type == domain.AttendeeCreator {
		return domain.ErrInvalidState
	}

	if err := withWriteRetry(ctx, func() error {
		return s.attendeeRepo.Delete(ctx, eventID, userID)
	}); err != nil {
		return err
	}

	s.publish(ctx, domain.TopicAttendeeRemoved, event.ID, att)
	return nil
}

func (s *rosterService) ListAttendees(ctx context.Context, eventID string) ([]*domain.AttendeeWithProfile, error) {
	attendees, err := s.attendeeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	// Profiles are fetched one by one (N+1). This keeps the implementation
	// simple; we can optimize later if needed.
	profiles := make(map[string]*domain.UserProfile)
	result := make([]*domain.AttendeeWithProfile, 0, len(attendees))
	for _, att := range attendees {
		profile, ok := profiles[att.UserID]
		if !ok {
			profile, err = s.userRepo.GetProfile(ctx, att.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Profile deleted but roster entry remains; keep the entry.
					profile = nil
				} else {
					return nil, fmt.Errorf("get profile: %w", err)
				}
			}
			profiles[att.UserID] = profile
		}
		result = append(result, &domain.AttendeeWithProfile{
			Attendee: att,
			Profile:  profile,
		})
	}
	return result, nil
}

func (s *rosterService) GetRosterStats(ctx context.Context, eventID string) (*domain.RosterStats, error) {
	attendees, err := s.attendeeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	stats := &domain.RosterStats{Total: len(attendees)}
	for _, att := range attendees {
		switch att.Type {
		case domain.AttendeeCreator:
			stats.Creators++
		case domain.AttendeeInvited:
			stats.Invited++
		case domain.AttendeeRegistered:
			stats.Registered++
		}
		if att.CheckedIn {
			stats.CheckedIn++
		}
	}
	return stats, nil
}

func (s *rosterService) requireOrganizer(ctx context.Context, eventID, organizerID string) (*domain.Event, error) {
	if organizerID == "" {
		return nil, domain.ErrUnauthorized
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.IsOrganizer(organizerID) {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *rosterService) publish(ctx context.Context, topic, eventID string, att *domain.Attendee) {
	if err := s.publisher.Publish(ctx, topic, att); err != nil {
		s.logger.WarnContext(ctx, "publish failed", "topic", topic, "event_id", eventID, "err", err)
	}
}
