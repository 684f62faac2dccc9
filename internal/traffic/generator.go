package traffic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/pkg/metrics"
)

var (
	ErrInvalidRequest = errors.New("traffic: invalid request")
	ErrGeneration     = errors.New("traffic: generation failed")
	ErrSeedInProgress = errors.New("traffic: seed already in progress for center")
)

// Store is the event-store contract the generator writes through.
//
// InsertEvents must be all-or-nothing: the generator hands it one full day of
// events at a time and relies on no partial day being committed.
type Store interface {
	InsertEvents(ctx context.Context, events []calls.CallEvent) error
	DeleteEvents(ctx context.Context, centerID int, from, to time.Time) (int64, error)
	// ContactNumber returns "" (no error) when the center has no configured number.
	ContactNumber(ctx context.Context, centerID int) (string, error)
}

// Locker serializes reseeds per center so two concurrent runs cannot
// interleave delete and insert. Optional; a nil Locker means no locking.
type Locker interface {
	Acquire(ctx context.Context, centerID int) (release func(), ok bool, err error)
}

// RunRecorder receives one record per finished center run, success or not.
// Recording is best-effort; it must never fail the run.
type RunRecorder interface {
	RecordSeedRun(ctx context.Context, centerID, windowDays int, deleted int64, inserted int, runErr error)
}

// Generator (re)generates a full synthetic dataset for a set of centers over
// a window of days ending today.
type Generator struct {
	store    Store
	locker   Locker
	recorder RunRecorder
	log      *slog.Logger
	clock    func() time.Time
	baseRng  *rand.Rand

	mu sync.Mutex // guards baseRng when deriving per-center seeds
}

// GeneratorOptions tunes non-essential generator behavior.
// Rand makes every draw reproducible in tests; production leaves it nil.
type GeneratorOptions struct {
	Rand     *rand.Rand
	Locker   Locker
	Recorder RunRecorder
	Logger   *slog.Logger
	Clock    func() time.Time
}

func NewGenerator(store Store, opts GeneratorOptions) *Generator {
	g := &Generator{
		store:    store,
		locker:   opts.Locker,
		recorder: opts.Recorder,
		log:      opts.Logger,
		clock:    opts.Clock,
		baseRng:  opts.Rand,
	}
	if g.log == nil {
		g.log = slog.Default()
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	if g.baseRng == nil {
		g.baseRng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

// Run reseeds each center in parallel. Centers are independent: a failure in
// one aborts only that center's remaining days, and Run reports the combined
// per-center errors.
func (g *Generator) Run(ctx context.Context, centerIDs []int, windowDays int, profile Profile) error {
	if g.store == nil {
		return errors.New("traffic: store not configured")
	}
	if len(centerIDs) == 0 {
		return fmt.Errorf("%w: no center ids", ErrInvalidRequest)
	}
	for _, id := range centerIDs {
		if id <= 0 {
			return fmt.Errorf("%w: center id %d", ErrInvalidRequest, id)
		}
	}
	if windowDays <= 0 {
		return fmt.Errorf("%w: window days %d", ErrInvalidRequest, windowDays)
	}
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	errs := make([]error, len(centerIDs))
	var wg sync.WaitGroup
	for i, centerID := range centerIDs {
		// rand.Rand is not goroutine-safe; each center run gets its own
		// sampler derived from the base source.
		g.mu.Lock()
		seed := g.baseRng.Int63()
		g.mu.Unlock()

		wg.Add(1)
		go func(i, centerID int, seed int64) {
			defer wg.Done()
			sampler := NewSampler(rand.New(rand.NewSource(seed)))
			errs[i] = g.runCenter(ctx, centerID, windowDays, profile, sampler)
		}(i, centerID, seed)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (g *Generator) runCenter(ctx context.Context, centerID, windowDays int, profile Profile, sampler *Sampler) (err error) {
	if g.locker != nil {
		release, ok, lockErr := g.locker.Acquire(ctx, centerID)
		if lockErr != nil {
			return fmt.Errorf("%w: center %d: seed lock: %w", ErrGeneration, centerID, lockErr)
		}
		if !ok {
			return fmt.Errorf("%w: center %d", ErrSeedInProgress, centerID)
		}
		defer release()
	}

	start := g.clock()
	var deleted int64
	inserted := 0
	defer func() {
		if g.recorder != nil {
			g.recorder.RecordSeedRun(ctx, centerID, windowDays, deleted, inserted, err)
		}
		metrics.SeedRuns.Inc()
		if err != nil {
			metrics.SeedFailures.Inc()
		}
	}()

	called, err := g.store.ContactNumber(ctx, centerID)
	if err != nil {
		return fmt.Errorf("%w: center %d: contact lookup: %w", ErrGeneration, centerID, err)
	}
	if called == "" {
		called = profile.FallbackCalled
	}

	now := g.clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Wipe one extra day on each side: the lower bound so a prior run's
	// oldest day cannot survive a shrunk window, the upper bound so today's
	// events written after the current wall-clock time are covered too.
	// Anything less and repeated reseeds accumulate duplicates.
	from := today.AddDate(0, 0, -(windowDays + 1))
	to := today.AddDate(0, 0, 1)
	deleted, err = g.store.DeleteEvents(ctx, centerID, from, to)
	if err != nil {
		return fmt.Errorf("%w: center %d: delete window: %w", ErrGeneration, centerID, err)
	}

	synth := NewSynthesizer(sampler, profile)

	// Oldest to newest; a failed day aborts the rest of this center's window.
	for offset := windowDays - 1; offset >= 0; offset-- {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: center %d: %w", ErrGeneration, centerID, ctxErr)
		}
		day := today.AddDate(0, 0, -offset)
		volume := sampler.DayVolume(day, profile)

		events := make([]calls.CallEvent, 0, volume)
		for n := 0; n < volume; n++ {
			events = append(events, synth.Event(centerID, day, called))
		}
		if len(events) == 0 {
			continue
		}
		if err = g.store.InsertEvents(ctx, events); err != nil {
			return fmt.Errorf("%w: center %d day %s: %w", ErrGeneration, centerID, day.Format("2006-01-02"), err)
		}
		inserted += len(events)
		metrics.EventsGenerated.Add(float64(len(events)))
	}

	g.log.Info("seed run complete",
		"center_id", centerID,
		"window_days", windowDays,
		"deleted", deleted,
		"inserted", inserted,
		"elapsed_ms", g.clock().Sub(start).Milliseconds(),
	)
	return nil
}
