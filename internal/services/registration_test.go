package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"gatherly/internal/domain"
)

func publicEvent(capacity int, waitingList bool) *domain.Event {
	return &domain.Event{
		ID:               "event-1",
		CalendarID:       "cal-1",
		Name:             "Go Meetup",
		CreatorID:        "creator-1",
		OwnerID:          "owner-1",
		IsPublic:         true,
		HasCapacityLimit: capacity > 0,
		Capacity:         capacity,
		WaitingList:      waitingList,
	}
}

func TestUpsertRSVP_CreatesAndOverwrites(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(0, false))

	first, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 2, "bringing snacks")
	if err != nil {
		t.Fatalf("UpsertRSVP: %v", err)
	}
	if first.Status != domain.RSVPGoing || first.GuestCount != 2 {
		t.Errorf("rsvp = %+v, want going with 2 guests", first)
	}

	second, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPMaybe, 0, "")
	if err != nil {
		t.Fatalf("UpsertRSVP overwrite: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("overwrite created a new record: %s != %s", second.ID, first.ID)
	}
	if env.rsvpRepo.count() != 1 {
		t.Errorf("repo holds %d rsvps, want exactly 1 per (event,user)", env.rsvpRepo.count())
	}

	got, err := env.registration.GetRSVP(ctx, "event-1", "alice")
	if err != nil {
		t.Fatalf("GetRSVP: %v", err)
	}
	if got.Status != domain.RSVPMaybe {
		t.Errorf("status = %s, want maybe", got.Status)
	}
}

func TestUpsertRSVP_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(0, false))

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("empty user: err = %v, want ErrUnauthorized", err)
	}
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", "attending", 0, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad status: err = %v, want ErrInvalidInput", err)
	}
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPWaitlisted, 0, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("caller-set waitlisted: err = %v, want ErrInvalidInput", err)
	}
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, -1, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative guests: err = %v, want ErrInvalidInput", err)
	}
	if _, err := env.registration.UpsertRSVP(ctx, "missing", "alice", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing event: err = %v, want ErrNotFound", err)
	}
}

// Capacity 2, no waiting list: A(0 guests) fills one seat, B(1 guest)
// would need two more and is rejected, B retries without guests and
// fits, C is rejected, and after A cancels C fits.
func TestUpsertRSVP_CapacityScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(2, false))

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "user-a", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("A going: %v", err)
	}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "user-b", domain.RSVPGoing, 1, ""); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("B with guest: err = %v, want ErrCapacityExceeded", err)
	}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "user-b", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("B alone: %v", err)
	}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "user-c", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("C at full event: err = %v, want ErrCapacityExceeded", err)
	}

	if err := env.registration.RemoveRSVP(ctx, "event-1", "user-a"); err != nil {
		t.Fatalf("A cancel: %v", err)
	}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "user-c", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("C after A's cancellation: %v", err)
	}
}

func TestUpsertRSVP_EditingOwnRSVPDoesNotDoubleCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(3, false))

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 2, ""); err != nil {
		t.Fatalf("initial rsvp: %v", err)
	}
	// Alice occupies all 3 seats; editing her own notes must not trip
	// the ceiling against her prior self.
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 2, "updated"); err != nil {
		t.Fatalf("self edit: %v", err)
	}
}

func TestUpsertRSVP_FullEventWithWaitingListWaitlists(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(1, true))
	env.userRepo.profiles["bob"] = &domain.UserProfile{ID: "bob", Email: "bob@example.com"}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("alice: %v", err)
	}

	rsvp, err := env.registration.UpsertRSVP(ctx, "event-1", "bob", domain.RSVPGoing, 0, "")
	if err != nil {
		t.Fatalf("bob: %v", err)
	}
	if rsvp.Status != domain.RSVPWaitlisted {
		t.Errorf("bob's status = %s, want waitlisted", rsvp.Status)
	}

	// Waitlisted entries hold no seat and do not show on the roster.
	if _, err := env.attendeeRepo.GetByEventAndUser(ctx, "event-1", "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("waitlisted bob on roster: err = %v, want ErrNotFound", err)
	}

	waitlist, err := env.registration.GetWaitlist(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetWaitlist: %v", err)
	}
	if len(waitlist) != 1 || waitlist[0].UserID != "bob" {
		t.Errorf("waitlist = %+v, want [bob]", waitlist)
	}

	env.emails.mu.Lock()
	notified := len(env.emails.waitlisted)
	env.emails.mu.Unlock()
	if notified != 1 {
		t.Errorf("waitlist notices sent = %d, want 1", notified)
	}
}

func TestUpsertRSVP_OrganizerBypassesCapacity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(1, false))

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("alice: %v", err)
	}
	// Event is full, but the creator always gets in.
	rsvp, err := env.registration.UpsertRSVP(ctx, "event-1", "creator-1", domain.RSVPGoing, 0, "")
	if err != nil {
		t.Fatalf("creator at full event: %v", err)
	}
	if rsvp.Status != domain.RSVPGoing {
		t.Errorf("creator status = %s, want going", rsvp.Status)
	}
}

func TestUpsertRSVP_ApprovalGating(t *testing.T) {
	ctx := context.Background()
	event := publicEvent(0, false)
	event.RequiresApproval = true
	env := newTestEnv(event)

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrApprovalRequired) {
		t.Errorf("no request: err = %v, want ErrApprovalRequired", err)
	}

	// Maybe is not gated.
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPMaybe, 0, ""); err != nil {
		t.Errorf("maybe on gated event: %v", err)
	}

	env.approvalRepo.Create(ctx, &domain.ApprovalRequest{
		EventID: "event-1", UserID: "bob", Status: domain.ApprovalPending,
	})
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "bob", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrApprovalPending) {
		t.Errorf("pending request: err = %v, want ErrApprovalPending", err)
	}

	env.approvalRepo.Create(ctx, &domain.ApprovalRequest{
		EventID: "event-1", UserID: "carol", Status: domain.ApprovalRejected,
	})
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "carol", domain.RSVPGoing, 0, ""); !errors.Is(err, domain.ErrApprovalRejected) {
		t.Errorf("rejected request: err = %v, want ErrApprovalRejected", err)
	}

	env.approvalRepo.Create(ctx, &domain.ApprovalRequest{
		EventID: "event-1", UserID: "dave", Status: domain.ApprovalApproved,
	})
	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "dave", domain.RSVPGoing, 0, ""); err != nil {
		t.Errorf("approved request: %v", err)
	}
}

func TestRemoveRSVP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(0, false))

	if err := env.registration.RemoveRSVP(ctx, "event-1", "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("remove without rsvp: err = %v, want ErrNotFound", err)
	}

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("UpsertRSVP: %v", err)
	}
	if _, err := env.attendeeRepo.GetByEventAndUser(ctx, "event-1", "alice"); err != nil {
		t.Fatalf("alice should be on the roster: %v", err)
	}

	if err := env.registration.RemoveRSVP(ctx, "event-1", "alice"); err != nil {
		t.Fatalf("RemoveRSVP: %v", err)
	}
	if _, err := env.registration.GetRSVP(ctx, "event-1", "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rsvp after removal: err = %v, want ErrNotFound", err)
	}
	if _, err := env.attendeeRepo.GetByEventAndUser(ctx, "event-1", "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("roster entry after removal: err = %v, want ErrNotFound", err)
	}
	if n := env.publisher.published(domain.TopicRSVPRemoved); n != 1 {
		t.Errorf("rsvp.removed published %d times, want 1", n)
	}
}

func TestRemoveRSVP_CreatorKeepsRosterEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(0, false))

	if _, err := env.registration.UpsertRSVP(ctx, "event-1", "creator-1", domain.RSVPGoing, 0, ""); err != nil {
		t.Fatalf("creator rsvp: %v", err)
	}
	if err := env.registration.RemoveRSVP(ctx, "event-1", "creator-1"); err != nil {
		t.Fatalf("creator cancel: %v", err)
	}

	att, err := env.attendeeRepo.GetByEventAndUser(ctx, "event-1", "creator-1")
	if err != nil {
		t.Fatalf("creator roster entry gone: %v", err)
	}
	if att.Type != domain.AttendeeCreator {
		t.Errorf("creator entry type = %s, want creator", att.Type)
	}
}

func TestGetRSVPSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(publicEvent(0, false))

	seedRSVP(t, env.rsvpRepo, "event-1", "a", domain.RSVPGoing, 2)
	seedRSVP(t, env.rsvpRepo, "event-1", "b", domain.RSVPGoing, 1)
	seedRSVP(t, env.rsvpRepo, "event-1", "c", domain.RSVPMaybe, 0)
	seedRSVP(t, env.rsvpRepo, "event-1", "d", domain.RSVPNotGoing, 0)
	seedRSVP(t, env.rsvpRepo, "event-1", "e", domain.RSVPWaitlisted, 3)

	summary, err := env.registration.GetRSVPSummary(ctx, "event-1")
	if err != nil {
		t.Fatalf("GetRSVPSummary: %v", err)
	}
	want := domain.RSVPSummary{Going: 2, Maybe: 1, NotGoing: 1, Waitlisted: 1, TotalGuests: 3}
	if *summary != want {
		t.Errorf("summary = %+v, want %+v", *summary, want)
	}
}

// An upsert that was admissible when it started must still honor a
// review that settled while it waited for the event lock: the approval
// state is read under the lock, together with the write.
func TestUpsertRSVP_SeesReviewSettledWhileWaitingForLock(t *testing.T) {
	ctx := context.Background()
	event := publicEvent(0, false)
	event.RequiresApproval = true
	env := newTestEnv(event)

	req := &domain.ApprovalRequest{
		EventID: "event-1", UserID: "alice", Status: domain.ApprovalApproved,
	}
	if err := env.approvalRepo.Create(ctx, req); err != nil {
		t.Fatalf("seed approval: %v", err)
	}

	unlock := env.locks.Lock("event-1")
	errCh := make(chan error, 1)
	go func() {
		_, err := env.registration.UpsertRSVP(ctx, "event-1", "alice", domain.RSVPGoing, 0, "")
		errCh <- err
	}()

	// The organizer rejects alice while her upsert is parked on the lock.
	time.Sleep(50 * time.Millisecond)
	if _, err := env.approvalRepo.Review(ctx, req.ID, domain.ApprovalRejected, "creator-1", "", time.Now()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	unlock()

	if err := <-errCh; !errors.Is(err, domain.ErrApprovalRejected) {
		t.Errorf("upsert after settled rejection: err = %v, want ErrApprovalRejected", err)
	}
	if _, err := env.rsvpRepo.GetByEventAndUser(ctx, "event-1", "alice"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("rsvp written despite rejection: err = %v, want ErrNotFound", err)
	}
}

// Many users race for a small event; the total committed head count must
// never pass the ceiling.
func TestUpsertRSVP_ConcurrentWritesRespectCapacity(t *testing.T) {
	ctx := context.Background()
	const capacity = 5
	env := newTestEnv(publicEvent(capacity, false))

	const users = 40
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			env.registration.UpsertRSVP(ctx, "event-1", "user-"+strconv.Itoa(n), domain.RSVPGoing, 0, "")
		}(i)
	}
	wg.Wait()

	rsvps, err := env.rsvpRepo.ListByEventID(ctx, "event-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	heads := 0
	for _, r := range rsvps {
		if r.Status == domain.RSVPGoing {
			heads += r.HeadCount()
		}
	}
	if heads != capacity {
		t.Errorf("committed heads = %d, want exactly %d", heads, capacity)
	}
}
