package analytics

import (
	"context"
	"sync"
	"time"

	"callcenter-platform/internal/calls"
)

// MemoryRepo is an in-memory event source for tests.
// It enforces center isolation on reads, like the real store.
type MemoryRepo struct {
	mu     sync.Mutex
	Events []calls.CallEvent

	// delay simulates a slow store read; the read honors ctx cancellation
	// while waiting, which the fan-out tests rely on.
	delay time.Duration
	Err   error
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

// SetDelay makes subsequent reads block for d before returning.
func (r *MemoryRepo) SetDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = d
}

func (r *MemoryRepo) ListEvents(ctx context.Context, centerID int, from, to time.Time) ([]calls.CallEvent, error) {
	r.mu.Lock()
	delay := r.delay
	r.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.CallEvent, 0)
	for _, e := range r.Events {
		if e.CenterID != centerID {
			continue
		}
		if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
