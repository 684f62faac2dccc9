package traffic

import (
	"context"
	"sync"
	"time"

	"callcenter-platform/internal/calls"
)

// MemoryStore is an in-memory event store for tests and early development.
// Inserts are all-or-nothing per call, mirroring the Postgres contract.
type MemoryStore struct {
	mu     sync.Mutex
	events []calls.CallEvent

	// Contacts maps center id to its configured contact number.
	Contacts map[int]string

	// InsertErrAfter makes InsertEvents fail once the given number of calls
	// succeeded; -1 (default via NewMemoryStore) disables the fault.
	InsertErrAfter int
	InsertErr      error
	inserts        int

	DeleteErr  error
	ContactErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Contacts: map[int]string{}, InsertErrAfter: -1}
}

func (m *MemoryStore) InsertEvents(ctx context.Context, events []calls.CallEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.InsertErr != nil && m.InsertErrAfter >= 0 && m.inserts >= m.InsertErrAfter {
		return m.InsertErr
	}
	m.inserts++
	m.events = append(m.events, events...)
	return nil
}

func (m *MemoryStore) DeleteEvents(ctx context.Context, centerID int, from, to time.Time) (int64, error) {
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	var deleted int64
	for _, e := range m.events {
		inRange := e.CenterID == centerID && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to)
		if inRange {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}

func (m *MemoryStore) ContactNumber(ctx context.Context, centerID int) (string, error) {
	if m.ContactErr != nil {
		return "", m.ContactErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Contacts[centerID], nil
}

// Events returns a copy of the stored events for one center.
func (m *MemoryStore) Events(centerID int) []calls.CallEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]calls.CallEvent, 0)
	for _, e := range m.events {
		if e.CenterID == centerID {
			out = append(out, e)
		}
	}
	return out
}
