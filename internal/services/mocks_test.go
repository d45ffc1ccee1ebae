package services

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gatherly/internal/domain"
)

// In-memory repositories shared by the service tests. They are guarded
// by mutexes because the capacity tests hammer them from many
// goroutines.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.Event
}

func newMemEventRepo(events ...*domain.Event) *memEventRepo {
	m := &memEventRepo{events: make(map[string]*domain.Event)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *ev
	return &copied, nil
}

type memRSVPRepo struct {
	mu    sync.Mutex
	seq   int
	rsvps map[string]*domain.RSVP // "eventID:userID"
}

func newMemRSVPRepo() *memRSVPRepo {
	return &memRSVPRepo{rsvps: make(map[string]*domain.RSVP)}
}

func (m *memRSVPRepo) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := rsvp.EventID + ":" + rsvp.UserID
	if existing, ok := m.rsvps[key]; ok {
		rsvp.ID = existing.ID
	} else {
		m.seq++
		rsvp.ID = "rsvp-" + strconv.Itoa(m.seq)
	}
	copied := *rsvp
	m.rsvps[key] = &copied
	return nil
}

func (m *memRSVPRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rsvp, ok := m.rsvps[eventID+":"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *rsvp
	return &copied, nil
}

func (m *memRSVPRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RSVP
	for _, rsvp := range m.rsvps {
		if rsvp.EventID == eventID {
			copied := *rsvp
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memRSVPRepo) Delete(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventID + ":" + userID
	if _, ok := m.rsvps[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rsvps, key)
	return nil
}

func (m *memRSVPRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rsvps)
}

type memApprovalRepo struct {
	mu   sync.Mutex
	seq  int
	byID map[string]*domain.ApprovalRequest
}

func newMemApprovalRepo() *memApprovalRepo {
	return &memApprovalRepo{byID: make(map[string]*domain.ApprovalRequest)}
}

func (m *memApprovalRepo) Create(ctx context.Context, req *domain.ApprovalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	req.ID = "req-" + strconv.Itoa(m.seq)
	copied := *req
	m.byID[req.ID] = &copied
	return nil
}

func (m *memApprovalRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *memApprovalRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, req := range m.byID {
		if req.EventID == eventID && req.UserID == userID {
			copied := *req
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memApprovalRepo) ListByEventAndStatus(ctx context.Context, eventID string, status domain.ApprovalStatus) ([]*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.ApprovalRequest
	for _, req := range m.byID {
		if req.EventID == eventID && req.Status == status {
			copied := *req
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memApprovalRepo) Resubmit(ctx context.Context, id string, guestCount int, message string, requestedAt time.Time) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	req.Status = domain.ApprovalPending
	req.GuestCount = guestCount
	req.Message = message
	req.RequestedAt = requestedAt
	req.ReviewedAt = nil
	req.ReviewedBy = ""
	req.ReviewNotes = ""
	copied := *req
	return &copied, nil
}

func (m *memApprovalRepo) Review(ctx context.Context, id string, status domain.ApprovalStatus, reviewedBy, notes string, reviewedAt time.Time) (*domain.ApprovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	req.Status = status
	req.ReviewedAt = &reviewedAt
	req.ReviewedBy = reviewedBy
	req.ReviewNotes = notes
	copied := *req
	return &copied, nil
}

type memAttendeeRepo struct {
	mu        sync.Mutex
	seq       int
	attendees map[string]*domain.Attendee // "eventID:userID"
}

func newMemAttendeeRepo() *memAttendeeRepo {
	return &memAttendeeRepo{attendees: make(map[string]*domain.Attendee)}
}

func (m *memAttendeeRepo) put(att *domain.Attendee) {
	copied := *att
	m.attendees[att.EventID+":"+att.UserID] = &copied
}

func (m *memAttendeeRepo) Upsert(ctx context.Context, att *domain.Attendee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := att.EventID + ":" + att.UserID
	if existing, ok := m.attendees[key]; ok {
		att.ID = existing.ID
		if existing.Type == domain.AttendeeCreator {
			att.Type = domain.AttendeeCreator
		}
	} else {
		m.seq++
		att.ID = "att-" + strconv.Itoa(m.seq)
	}
	m.put(att)
	return nil
}

func (m *memAttendeeRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.attendees[eventID+":"+userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *att
	return &copied, nil
}

func (m *memAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Attendee
	for _, att := range m.attendees {
		if att.EventID == eventID {
			copied := *att
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memAttendeeRepo) SetCheckIn(ctx context.Context, eventID, userID string, checkedIn bool, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	att, ok := m.attendees[eventID+":"+userID]
	if !ok {
		return domain.ErrNotFound
	}
	att.CheckedIn = checkedIn
	att.CheckedInAt = at
	return nil
}

func (m *memAttendeeRepo) Delete(ctx context.Context, eventID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventID + ":" + userID
	if _, ok := m.attendees[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.attendees, key)
	return nil
}

type memInvitationRepo struct {
	statuses map[string]domain.InvitationStatus // "eventID:userID"
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{statuses: make(map[string]domain.InvitationStatus)}
}

func (m *memInvitationRepo) GetStatus(ctx context.Context, eventID, userID string) (domain.InvitationStatus, error) {
	if status, ok := m.statuses[eventID+":"+userID]; ok {
		return status, nil
	}
	return domain.InvitationNone, nil
}

type memUserRepo struct {
	profiles map[string]*domain.UserProfile
}

func newMemUserRepo(profiles ...*domain.UserProfile) *memUserRepo {
	m := &memUserRepo{profiles: make(map[string]*domain.UserProfile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memUserRepo) GetProfile(ctx context.Context, id string) (*domain.UserProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type stubEmailService struct {
	mu         sync.Mutex
	decisions  []*domain.ApprovalDecisionEmailData
	waitlisted []*domain.WaitlistNoticeEmailData
}

func (s *stubEmailService) SendApprovalDecision(ctx context.Context, data *domain.ApprovalDecisionEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, data)
	return nil
}

func (s *stubEmailService) SendWaitlistNotice(ctx context.Context, data *domain.WaitlistNoticeEmailData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waitlisted = append(s.waitlisted, data)
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (s *stubPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, routingKey)
	return nil
}

func (s *stubPublisher) published(topic string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// testEnv bundles a fully wired service stack over the in-memory repos.
type testEnv struct {
	eventRepo    *memEventRepo
	rsvpRepo     *memRSVPRepo
	approvalRepo *memApprovalRepo
	attendeeRepo *memAttendeeRepo
	invRepo      *memInvitationRepo
	userRepo     *memUserRepo
	emails       *stubEmailService
	publisher    *stubPublisher
	locks        *EventLocks

	registration domain.RegistrationService
	approval     domain.ApprovalService
	roster       domain.RosterService
}

func newTestEnv(events ...*domain.Event) *testEnv {
	env := &testEnv{
		eventRepo:    newMemEventRepo(events...),
		rsvpRepo:     newMemRSVPRepo(),
		approvalRepo: newMemApprovalRepo(),
		attendeeRepo: newMemAttendeeRepo(),
		invRepo:      newMemInvitationRepo(),
		userRepo:     newMemUserRepo(),
		emails:       &stubEmailService{},
		publisher:    &stubPublisher{},
	}

	logger := testLogger()
	locks := NewEventLocks()
	env.locks = locks
	access := NewAccessPolicy(env.invRepo, env.approvalRepo)
	capacity := NewCapacityAllocator(env.rsvpRepo, env.approvalRepo)
	env.roster = NewRosterService(env.eventRepo, env.attendeeRepo, env.userRepo, locks, env.publisher, logger)
	env.registration = NewRegistrationService(env.eventRepo, env.rsvpRepo, env.userRepo, env.roster, access, capacity, locks, env.emails, env.publisher, logger)
	env.approval = NewApprovalService(env.eventRepo, env.approvalRepo, env.rsvpRepo, env.userRepo, env.roster, capacity, locks, env.emails, env.publisher, logger)
	return env
}
