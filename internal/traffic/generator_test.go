package traffic

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testGenerator(store Store, seed int64, now time.Time) *Generator {
	return NewGenerator(store, GeneratorOptions{
		Rand:  rand.New(rand.NewSource(seed)),
		Clock: fixedClock(now),
	})
}

func TestRun_ValidatesInput(t *testing.T) {
	store := NewMemoryStore()
	g := testGenerator(store, 1, time.Now())
	ctx := context.Background()
	p := DefaultProfile()

	if err := g.Run(ctx, nil, 7, p); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty owners, got %v", err)
	}
	if err := g.Run(ctx, []int{0}, 7, p); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for owner 0, got %v", err)
	}
	if err := g.Run(ctx, []int{1}, 0, p); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero window, got %v", err)
	}

	bad := p
	bad.Intents = nil
	if err := g.Run(ctx, []int{1}, 7, bad); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad profile, got %v", err)
	}
}

func TestRun_EventsStayInsideWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, time.August, 26, 10, 30, 0, 0, time.UTC)
	g := testGenerator(store, 2, now)

	const days = 7
	if err := g.Run(context.Background(), []int{1}, days, DefaultProfile()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	oldest := time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2026, time.August, 27, 0, 0, 0, 0, time.UTC)
	evs := store.Events(1)
	if len(evs) == 0 {
		t.Fatalf("expected events")
	}
	for _, e := range evs {
		if e.CreatedAt.Before(oldest) || !e.CreatedAt.Before(newest) {
			t.Fatalf("event outside window: %v", e.CreatedAt)
		}
	}
}

func TestRun_UsesConfiguredContactNumberWithFallback(t *testing.T) {
	store := NewMemoryStore()
	store.Contacts[1] = "0199887766"
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	g := testGenerator(store, 3, now)
	p := DefaultProfile()

	if err := g.Run(context.Background(), []int{1, 2}, 3, p); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, e := range store.Events(1) {
		if e.Called != "0199887766" {
			t.Fatalf("expected configured number, got %q", e.Called)
		}
	}
	for _, e := range store.Events(2) {
		if e.Called != p.FallbackCalled {
			t.Fatalf("expected fallback number, got %q", e.Called)
		}
	}
}

func TestRun_ReseedDoesNotAccumulate(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	p := DefaultProfile()
	const days = 7

	// Expected bounds for a full window, from the profile itself.
	expectedMin, expectedMax := 0, 0
	for offset := 0; offset < days; offset++ {
		day := now.AddDate(0, 0, -offset)
		band, ok := p.Bands[day.Weekday()]
		if !ok {
			band = Band{MinMultiplier: 1, MaxMultiplier: 1}
		}
		expectedMin += int(math.Round(float64(p.BaseMin) * band.MinMultiplier))
		expectedMax += int(math.Round(float64(p.BaseMax) * band.MaxMultiplier))
	}

	for run := 0; run < 2; run++ {
		g := testGenerator(store, int64(100+run), now)
		if err := g.Run(context.Background(), []int{1}, days, p); err != nil {
			t.Fatalf("run %d: unexpected err: %v", run, err)
		}
		got := len(store.Events(1))
		if got < expectedMin || got > expectedMax {
			t.Fatalf("run %d: count %d outside [%d, %d]; reseed duplicated or lost events", run, got, expectedMin, expectedMax)
		}
	}
}

func TestRun_InsertFailureAbortsRemainingDaysForThatCenterOnly(t *testing.T) {
	store := NewMemoryStore()
	store.InsertErr = errors.New("disk full")
	store.InsertErrAfter = 2 // first two day-batches succeed, third fails
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	g := testGenerator(store, 4, now)

	err := g.Run(context.Background(), []int{1}, 7, DefaultProfile())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}

	// Only the day batches inserted before the failure remain; the run did
	// not keep writing after the failed day.
	days := map[string]bool{}
	for _, e := range store.Events(1) {
		days[e.CreatedAt.Format("2006-01-02")] = true
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 committed days before failure, got %d", len(days))
	}
}

func TestRun_CenterFailuresAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	store.ContactErr = nil
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)

	// A store that fails deletes only for center 2.
	failing := &deleteFailStore{MemoryStore: store, failCenter: 2}
	g := NewGenerator(failing, GeneratorOptions{
		Rand:  rand.New(rand.NewSource(5)),
		Clock: fixedClock(now),
	})

	err := g.Run(context.Background(), []int{1, 2}, 3, DefaultProfile())
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if len(store.Events(1)) == 0 {
		t.Fatalf("center 1 should have seeded despite center 2 failing")
	}
	if len(store.Events(2)) != 0 {
		t.Fatalf("center 2 should have no events after delete failure")
	}
}

type deleteFailStore struct {
	*MemoryStore
	failCenter int
}

func (s *deleteFailStore) DeleteEvents(ctx context.Context, centerID int, from, to time.Time) (int64, error) {
	if centerID == s.failCenter {
		return 0, errors.New("delete refused")
	}
	return s.MemoryStore.DeleteEvents(ctx, centerID, from, to)
}

func TestRun_LockerBlocksConcurrentReseed(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	locker := &denyLocker{}
	g := NewGenerator(store, GeneratorOptions{
		Rand:   rand.New(rand.NewSource(6)),
		Clock:  fixedClock(now),
		Locker: locker,
	})

	err := g.Run(context.Background(), []int{1}, 3, DefaultProfile())
	if !errors.Is(err, ErrSeedInProgress) {
		t.Fatalf("expected ErrSeedInProgress, got %v", err)
	}
	if len(store.Events(1)) != 0 {
		t.Fatalf("locked center must not be touched")
	}
}

type denyLocker struct{}

func (denyLocker) Acquire(ctx context.Context, centerID int) (func(), bool, error) {
	return nil, false, nil
}

func TestRun_RecordsSeedRuns(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	rec := &captureRecorder{}
	g := NewGenerator(store, GeneratorOptions{
		Rand:     rand.New(rand.NewSource(7)),
		Clock:    fixedClock(now),
		Recorder: rec,
	})

	if err := g.Run(context.Background(), []int{1}, 3, DefaultProfile()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(rec.runs))
	}
	if rec.runs[0].centerID != 1 || rec.runs[0].inserted == 0 || rec.runs[0].err != nil {
		t.Fatalf("unexpected record: %+v", rec.runs[0])
	}
}

type captureRecorder struct {
	runs []capturedRun
}

type capturedRun struct {
	centerID, windowDays, inserted int
	deleted                        int64
	err                            error
}

func (r *captureRecorder) RecordSeedRun(ctx context.Context, centerID, windowDays int, deleted int64, inserted int, runErr error) {
	r.runs = append(r.runs, capturedRun{centerID: centerID, windowDays: windowDays, deleted: deleted, inserted: inserted, err: runErr})
}
