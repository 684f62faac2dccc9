package analytics

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned when a newer Refresh for the same view started
// before this one finished; the stale results are discarded rather than
// delivered.
var ErrSuperseded = errors.New("analytics: request superseded")

// Orchestrator fans one aggregation request out across several centers
// (a manager viewing every center they manage).
//
// Supersede bookkeeping is kept per view key (one key per caller), so
// refreshes from different managers never cancel each other. Within one view,
// each Refresh gets a monotonically increasing sequence number and cancels
// the previous in-flight request, so a period change mid-load can never
// overwrite fresher state with older data.
type Orchestrator struct {
	svc *Service

	mu    sync.Mutex
	views map[string]*refreshView
}

type refreshView struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewOrchestrator(svc *Service) *Orchestrator {
	return &Orchestrator{svc: svc, views: make(map[string]*refreshView)}
}

// Refresh aggregates all given centers concurrently and returns results
// keyed by center id. viewKey identifies the caller's view; only a newer
// Refresh with the same key supersedes this one. Any per-center failure
// fails the whole refresh with no partial payload.
func (o *Orchestrator) Refresh(ctx context.Context, viewKey string, centerIDs []int, period Period) (map[int]Result, error) {
	if len(centerIDs) == 0 {
		return nil, errors.New("analytics: no center ids")
	}

	o.mu.Lock()
	v := o.views[viewKey]
	if v == nil {
		v = &refreshView{}
		o.views[viewKey] = v
	}
	v.seq++
	seq := v.seq
	if v.cancel != nil {
		v.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	o.mu.Unlock()
	defer cancel()

	results := make([]Result, len(centerIDs))
	errs := make([]error, len(centerIDs))
	var wg sync.WaitGroup
	for i, id := range centerIDs {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			results[i], errs[i] = o.svc.Aggregate(runCtx, id, period)
		}(i, id)
	}
	wg.Wait()

	o.mu.Lock()
	stale := seq != v.seq
	if !stale {
		// Last in-flight refresh for this view; drop the bookkeeping so the
		// map does not grow with one entry per caller forever.
		delete(o.views, viewKey)
	}
	o.mu.Unlock()
	if stale {
		return nil, ErrSuperseded
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	out := make(map[int]Result, len(centerIDs))
	for i, id := range centerIDs {
		out[id] = results[i]
	}
	return out, nil
}
