package services

import "sync"

// EventLocks serializes registration-affecting writes per event. Every
// read-check-write sequence over occupancy or approval state runs under
// the event's lock, which is what keeps two users from both grabbing the
// last capacity slot. Rate-limit checks complete before any event lock
// is taken, so the two lock domains never nest.
type EventLocks struct {
	mu    sync.Mutex
	locks map[string]*eventLock
}

type eventLock struct {
	mu   sync.Mutex
	refs int
}

// NewEventLocks returns an empty keyed lock set.
func NewEventLocks() *EventLocks {
	return &EventLocks{locks: make(map[string]*eventLock)}
}

// Lock acquires the lock for eventID and returns its release function.
// Lock entries are created on first use and dropped once unreferenced.
func (l *EventLocks) Lock(eventID string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[eventID]
	if !ok {
		entry = &eventLock{}
		l.locks[eventID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, eventID)
		}
		l.mu.Unlock()
	}
}
