package analytics

import (
	"fmt"

	"callcenter-platform/internal/calls"
)

// Period is the aggregation window requested by the dashboard.
type Period string

const (
	Period24h Period = "24h"
	Period7d  Period = "7d"
	Period30d Period = "30d"
)

// ParsePeriod maps a query-string value to a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case Period24h, Period7d, Period30d:
		return Period(s), nil
	default:
		return "", fmt.Errorf("%w: period %q", ErrInvalidRequest, s)
	}
}

func (p Period) Valid() bool {
	switch p {
	case Period24h, Period7d, Period30d:
		return true
	default:
		return false
	}
}

// Days is the window length used as the hourly-activity denominator.
func (p Period) Days() int {
	switch p {
	case Period24h:
		return 1
	case Period7d:
		return 7
	case Period30d:
		return 30
	default:
		return 1
	}
}

// placeholderLabel marks the fake slice emitted for empty breakdowns so a
// full-circle chart can still render. Consumers must not treat it as data;
// the Result.Empty flag identifies it.
const placeholderLabel = "no_data"

// Result bundles every metric one dashboard needs for one center and period.
type Result struct {
	CenterID int    `json:"center_id"`
	Period   Period `json:"period"`

	Total      int                    `json:"total"`
	Categories map[calls.Category]int `json:"categories"`

	// PerformanceIndex is the inverse error rate in percent, 0..100.
	// An empty window reports 100 (no errors observed, not perfection);
	// check Empty before presenting it as an achievement.
	PerformanceIndex int `json:"performance_index"`

	HoursHandled      float64 `json:"hours_handled"`
	HoursHandledLabel string  `json:"hours_handled_label"`

	// Weekday has one bar per weekday (30d, averaged) or per calendar day
	// (24h/7d, literal counts over the last 7 days).
	Weekday []WeekdayBar `json:"weekday"`

	// Hourly holds the average event count per hour of day.
	Hourly []HourPoint `json:"hourly"`

	// AvgDurationByCategory covers the six real categories; "autre" is
	// excluded and empty categories are omitted entirely.
	AvgDurationByCategory map[calls.Category]float64 `json:"avg_duration_by_category"`

	TransferReasons []Slice `json:"transfer_reasons"`
	CategoryPie     []Slice `json:"category_pie"`

	// Empty is true when the window held no events; breakdowns then contain
	// the rendering placeholder instead of data.
	Empty bool `json:"empty"`
}

// WeekdayBar stacks handled vs redirected (transferred) volume.
type WeekdayBar struct {
	Label      string  `json:"label"`
	Handled    float64 `json:"handled"`
	Redirected float64 `json:"redirected"`
}

type HourPoint struct {
	Hour    int     `json:"hour"`
	Average float64 `json:"average"`
}

// Slice is one sector of a breakdown chart.
type Slice struct {
	Label       string `json:"label"`
	Value       int    `json:"value"`
	Placeholder bool   `json:"placeholder,omitempty"`
}
