package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/pkg/metrics"
)

var ErrInvalidRequest = errors.New("analytics: invalid request")

// Repository abstracts event reads for aggregation.
//
// Implementations must enforce center filtering; aggregation trusts the rows
// it receives.
type Repository interface {
	ListEvents(ctx context.Context, centerID int, from, to time.Time) ([]calls.CallEvent, error)
}

// Cache is an optional short-TTL result cache. Both methods are best-effort:
// a cache failure degrades to a recompute, never to a request failure.
type Cache interface {
	GetResult(ctx context.Context, centerID int, period Period) (Result, bool, error)
	SetResult(ctx context.Context, centerID int, period Period, r Result) error
}

// Service computes dashboard metrics over window-filtered call events.
// It holds no cross-call state; aggregation is read-only and parallel-safe.
type Service struct {
	repo  Repository
	cache Cache
	clock func() time.Time
	log   *slog.Logger
}

type ServiceOptions struct {
	Cache  Cache
	Clock  func() time.Time
	Logger *slog.Logger
}

func NewService(repo Repository, opts ServiceOptions) *Service {
	s := &Service{repo: repo, cache: opts.Cache, clock: opts.Clock, log: opts.Logger}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Aggregate computes the full metric bundle for one center and period.
// A store read failure surfaces as an error with no partial result.
func (s *Service) Aggregate(ctx context.Context, centerID int, period Period) (Result, error) {
	if centerID <= 0 {
		return Result{}, fmt.Errorf("%w: center id %d", ErrInvalidRequest, centerID)
	}
	if !period.Valid() {
		return Result{}, fmt.Errorf("%w: period %q", ErrInvalidRequest, period)
	}
	if s.repo == nil {
		return Result{}, errors.New("analytics: repository not configured")
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.GetResult(ctx, centerID, period); err == nil && ok {
			metrics.AggregateCacheHits.Inc()
			return cached, nil
		}
	}

	start := time.Now()
	defer func() {
		metrics.AggregateDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.clock().UTC()
	from := now.Add(-time.Duration(period.Days()) * 24 * time.Hour)

	events, err := s.repo.ListEvents(ctx, centerID, from, now)
	if err != nil {
		return Result{}, fmt.Errorf("analytics: list events: %w", err)
	}

	out := aggregate(centerID, period, events, now)

	if s.cache != nil {
		if err := s.cache.SetResult(ctx, centerID, period, out); err != nil {
			s.log.Debug("aggregate cache write failed", "center_id", centerID, "err", err)
		}
	}
	return out, nil
}

// weekdayLabels is indexed by time.Weekday (Sunday == 0).
var weekdayLabels = [7]string{"Dim", "Lun", "Mar", "Mer", "Jeu", "Ven", "Sam"}

// mondayFirst is the display order for the averaged weekday histogram.
var mondayFirst = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

func aggregate(centerID int, period Period, events []calls.CallEvent, now time.Time) Result {
	out := Result{
		CenterID:              centerID,
		Period:                period,
		Total:                 len(events),
		Categories:            map[calls.Category]int{},
		AvgDurationByCategory: map[calls.Category]float64{},
		Empty:                 len(events) == 0,
	}
	for _, c := range calls.Categories() {
		out.Categories[c] = 0
	}

	errorCount := 0
	durationSum := 0
	durSumByCat := map[calls.Category]int{}
	for _, e := range events {
		cat := calls.Classify(e.Stats)
		out.Categories[cat]++
		durSumByCat[cat] += e.Stats.Duration
		durationSum += e.Stats.Duration
		if e.Stats.ErrorLogic > 0 {
			errorCount++
		}
	}

	out.PerformanceIndex = performanceIndex(errorCount, len(events))
	out.HoursHandled = float64(durationSum) / 3600
	// %.1f alone rounds ties to even; the dashboard label rounds halves up.
	out.HoursHandledLabel = fmt.Sprintf("%.1f", math.Round(out.HoursHandled*10)/10)

	out.Weekday = weekdayHistogram(events, period, now)
	out.Hourly = hourlyActivity(events, period)

	for _, cat := range calls.Categories() {
		if cat == calls.CategoryAutre {
			continue
		}
		if n := out.Categories[cat]; n > 0 {
			out.AvgDurationByCategory[cat] = float64(durSumByCat[cat]) / float64(n)
		}
	}

	out.TransferReasons = transferBreakdown(events)
	out.CategoryPie = categoryPie(out.Categories)
	return out
}

// performanceIndex is the inverse error rate in percent. An empty window
// reports 100: no errors were observed because there was no data.
func performanceIndex(errorCount, total int) int {
	if total == 0 {
		return 100
	}
	idx := int(math.Round((1 - float64(errorCount)/float64(total)) * 100))
	if idx < 0 {
		idx = 0
	}
	if idx > 100 {
		idx = 100
	}
	return idx
}

func weekdayHistogram(events []calls.CallEvent, period Period, now time.Time) []WeekdayBar {
	if period == Period30d {
		return averagedWeekdays(events, now)
	}
	return literalLastDays(events, now)
}

// averagedWeekdays divides each weekday's totals by how many times that
// weekday occurs in the 30-day window.
func averagedWeekdays(events []calls.CallEvent, now time.Time) []WeekdayBar {
	var handled, redirected [7]float64
	for _, e := range events {
		wd := e.CreatedAt.Weekday()
		handled[wd]++
		if e.Stats.EndReason == calls.EndReasonTransfer {
			redirected[wd]++
		}
	}

	// Walk the window once to count weekday occurrences.
	var occurrences [7]int
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		occurrences[day.AddDate(0, 0, -i).Weekday()]++
	}

	out := make([]WeekdayBar, 0, 7)
	for _, wd := range mondayFirst {
		occ := occurrences[wd]
		if occ < 1 {
			occ = 1
		}
		out = append(out, WeekdayBar{
			Label:      weekdayLabels[wd],
			Handled:    handled[wd] / float64(occ),
			Redirected: redirected[wd] / float64(occ),
		})
	}
	return out
}

// literalLastDays reports raw per-calendar-day counts for the last 7 days,
// oldest first.
func literalLastDays(events []calls.CallEvent, now time.Time) []WeekdayBar {
	type dayKey struct{ y, m, d int }
	handled := map[dayKey]float64{}
	redirected := map[dayKey]float64{}
	for _, e := range events {
		y, m, d := e.CreatedAt.Date()
		k := dayKey{y, int(m), d}
		handled[k]++
		if e.Stats.EndReason == calls.EndReasonTransfer {
			redirected[k]++
		}
	}

	out := make([]WeekdayBar, 0, 7)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		y, m, d := day.Date()
		k := dayKey{y, int(m), d}
		out = append(out, WeekdayBar{
			Label:      weekdayLabels[day.Weekday()],
			Handled:    handled[k],
			Redirected: redirected[k],
		})
	}
	return out
}

func hourlyActivity(events []calls.CallEvent, period Period) []HourPoint {
	var counts [24]int
	for _, e := range events {
		counts[e.CreatedAt.Hour()]++
	}
	days := float64(period.Days())
	out := make([]HourPoint, 24)
	for h := 0; h < 24; h++ {
		out[h] = HourPoint{Hour: h, Average: float64(counts[h]) / days}
	}
	return out
}

// transferBreakdown tallies transferred calls over the fixed reason enum.
// With no transfers at all it returns the single rendering placeholder.
func transferBreakdown(events []calls.CallEvent) []Slice {
	counts := map[calls.TransferReason]int{}
	total := 0
	for _, e := range events {
		if e.Stats.EndReason != calls.EndReasonTransfer {
			continue
		}
		counts[e.Stats.TransferReason]++
		total++
	}
	if total == 0 {
		return []Slice{{Label: placeholderLabel, Value: 1, Placeholder: true}}
	}
	out := make([]Slice, 0, 11)
	for _, r := range calls.TransferReasons() {
		out = append(out, Slice{Label: string(r), Value: counts[r]})
	}
	return out
}

func categoryPie(categories map[calls.Category]int) []Slice {
	total := 0
	for _, n := range categories {
		total += n
	}
	if total == 0 {
		return []Slice{{Label: placeholderLabel, Value: 1, Placeholder: true}}
	}
	out := make([]Slice, 0, len(categories))
	for _, c := range calls.Categories() {
		out = append(out, Slice{Label: string(c), Value: categories[c]})
	}
	return out
}
