package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"callcenter-platform/internal/calls"
)

func TestRefresh_AggregatesAllCenters(t *testing.T) {
	repo := NewMemoryRepo()
	at := testNow.Add(-time.Hour)
	repo.Events = []calls.CallEvent{
		event(1, at, calls.CallStats{RdvBooked: 1, Duration: 60}),
		event(2, at, calls.CallStats{Emergency: true, Duration: 30}),
		event(2, at, calls.CallStats{Duration: 30}),
	}
	o := NewOrchestrator(testService(repo))

	out, err := o.Refresh(context.Background(), "mgr-1", []int{1, 2}, Period24h)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[1].Total != 1 || out[2].Total != 2 {
		t.Fatalf("unexpected totals: %d / %d", out[1].Total, out[2].Total)
	}
}

func TestRefresh_NewerRequestSupersedesOlder(t *testing.T) {
	repo := NewMemoryRepo()
	repo.SetDelay(50 * time.Millisecond)
	o := NewOrchestrator(testService(repo))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = o.Refresh(context.Background(), "mgr-1", []int{1}, Period30d)
	}()

	// Let the first refresh get in flight, then change the period.
	time.Sleep(10 * time.Millisecond)
	repo.SetDelay(0)
	out, err := o.Refresh(context.Background(), "mgr-1", []int{1}, Period24h)
	if err != nil {
		t.Fatalf("newer refresh failed: %v", err)
	}
	if out[1].Period != Period24h {
		t.Fatalf("expected fresh period, got %q", out[1].Period)
	}

	wg.Wait()
	if !errors.Is(firstErr, ErrSuperseded) {
		t.Fatalf("stale refresh must be discarded, got %v", firstErr)
	}
}

func TestRefresh_DifferentViewsDoNotSupersedeEachOther(t *testing.T) {
	repo := NewMemoryRepo()
	repo.SetDelay(50 * time.Millisecond)
	o := NewOrchestrator(testService(repo))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = o.Refresh(context.Background(), "mgr-a", []int{1}, Period30d)
	}()

	// A second manager refreshing their own view must not cancel the first.
	time.Sleep(10 * time.Millisecond)
	if _, err := o.Refresh(context.Background(), "mgr-b", []int{2}, Period24h); err != nil {
		t.Fatalf("unrelated refresh failed: %v", err)
	}

	wg.Wait()
	if firstErr != nil {
		t.Fatalf("unrelated caller superseded this refresh: %v", firstErr)
	}
}

func TestRefresh_PerCenterFailureFailsWholeRefresh(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Err = errors.New("read failed")
	o := NewOrchestrator(testService(repo))

	out, err := o.Refresh(context.Background(), "mgr-1", []int{1, 2}, Period24h)
	if err == nil {
		t.Fatalf("expected error")
	}
	if out != nil {
		t.Fatalf("no partial results on failure, got %v", out)
	}
}

func TestRefresh_RequiresCenters(t *testing.T) {
	o := NewOrchestrator(testService(NewMemoryRepo()))
	if _, err := o.Refresh(context.Background(), "mgr-1", nil, Period24h); err == nil {
		t.Fatalf("expected error for empty center list")
	}
}
