package traffic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"callcenter-platform/internal/calls"
)

var ErrInvalidProfile = errors.New("traffic: invalid profile")

// Band scales the base daily volume bounds for one day of the week.
// Invariant: 0 < MinMultiplier <= MaxMultiplier.
type Band struct {
	MinMultiplier float64 `json:"min_multiplier"`
	MaxMultiplier float64 `json:"max_multiplier"`
}

// WeekdayBands maps day-of-week to its volume band.
// A missing entry falls back to {1, 1} (no scaling).
type WeekdayBands map[time.Weekday]Band

// HourWeights holds the relative likelihood of a call per hour of day.
// Hours with weight 0 never produce events.
type HourWeights [24]float64

// IntentWeight is one entry of an intent distribution.
type IntentWeight struct {
	Intent      calls.IntentCode `json:"intent"`
	Probability float64          `json:"probability"`
}

// IntentDistribution is an ordered list of intent probabilities summing to 1.
type IntentDistribution []IntentWeight

// DurationRange bounds the uniform duration draw for one intent, in seconds.
type DurationRange struct {
	MinSeconds int `json:"min_seconds"`
	MaxSeconds int `json:"max_seconds"`
}

// Profile is the full synthetic-traffic configuration for one deployment.
//
// It is plain data passed into the generator by the caller; the engine holds
// no package-level defaults of its own.
type Profile struct {
	// BaseMin/BaseMax bound the daily event count before weekday scaling.
	BaseMin int `json:"base_min"`
	BaseMax int `json:"base_max"`

	Bands     WeekdayBands                       `json:"bands"`
	Hours     HourWeights                        `json:"hours"`
	Intents   IntentDistribution                 `json:"intents"`
	Durations map[calls.IntentCode]DurationRange `json:"durations"`

	// FallbackCalled is used when a center has no configured contact number.
	FallbackCalled string `json:"fallback_called"`

	// Birthdate sampling bounds for synthetic identities.
	BirthYearMin int `json:"birth_year_min"`
	BirthYearMax int `json:"birth_year_max"`
}

// probabilitySumTolerance allows for float accumulation error when checking
// that an intent distribution sums to 1.
const probabilitySumTolerance = 1e-9

func (p Profile) Validate() error {
	var errs []error

	if p.BaseMin < 0 {
		errs = append(errs, fmt.Errorf("%w: base_min must be >= 0", ErrInvalidProfile))
	}
	if p.BaseMax < p.BaseMin {
		errs = append(errs, fmt.Errorf("%w: base_max must be >= base_min", ErrInvalidProfile))
	}

	for day, b := range p.Bands {
		if b.MinMultiplier <= 0 || b.MaxMultiplier <= 0 {
			errs = append(errs, fmt.Errorf("%w: band for %s must have positive multipliers", ErrInvalidProfile, day))
		}
		if b.MinMultiplier > b.MaxMultiplier {
			errs = append(errs, fmt.Errorf("%w: band for %s has min > max", ErrInvalidProfile, day))
		}
	}

	for h, w := range p.Hours {
		if w < 0 {
			errs = append(errs, fmt.Errorf("%w: hour %d has negative weight", ErrInvalidProfile, h))
		}
	}

	if len(p.Intents) == 0 {
		errs = append(errs, fmt.Errorf("%w: intent distribution is empty", ErrInvalidProfile))
	}
	sum := 0.0
	for _, iw := range p.Intents {
		if !iw.Intent.Valid() {
			errs = append(errs, fmt.Errorf("%w: unknown intent %q", ErrInvalidProfile, iw.Intent))
		}
		if iw.Probability < 0 {
			errs = append(errs, fmt.Errorf("%w: intent %q has negative probability", ErrInvalidProfile, iw.Intent))
		}
		sum += iw.Probability
	}
	if len(p.Intents) > 0 && math.Abs(sum-1) > probabilitySumTolerance {
		errs = append(errs, fmt.Errorf("%w: intent probabilities sum to %v, want 1", ErrInvalidProfile, sum))
	}

	for intent, d := range p.Durations {
		if d.MinSeconds < 0 || d.MaxSeconds < d.MinSeconds {
			errs = append(errs, fmt.Errorf("%w: duration range for %q is malformed", ErrInvalidProfile, intent))
		}
	}

	if p.BirthYearMin != 0 && p.BirthYearMax != 0 && p.BirthYearMax < p.BirthYearMin {
		errs = append(errs, fmt.Errorf("%w: birth year range is inverted", ErrInvalidProfile))
	}

	return errors.Join(errs...)
}

// DefaultProfile returns a demo-grade profile: busy weekdays, quiet weekends,
// office-hour peaks, appointment-heavy intent mix.
//
// Callers own this data; the generator never falls back to it implicitly.
func DefaultProfile() Profile {
	return Profile{
		BaseMin: 40,
		BaseMax: 90,
		Bands: WeekdayBands{
			time.Sunday:    {MinMultiplier: 0.05, MaxMultiplier: 0.15},
			time.Monday:    {MinMultiplier: 1.10, MaxMultiplier: 1.40},
			time.Tuesday:   {MinMultiplier: 0.95, MaxMultiplier: 1.20},
			time.Wednesday: {MinMultiplier: 0.90, MaxMultiplier: 1.15},
			time.Thursday:  {MinMultiplier: 0.85, MaxMultiplier: 1.10},
			time.Friday:    {MinMultiplier: 0.95, MaxMultiplier: 1.25},
			time.Saturday:  {MinMultiplier: 0.20, MaxMultiplier: 0.45},
		},
		Hours: HourWeights{
			0, 0, 0, 0, 0, 0, 0, // 00-06: closed
			1,                    // 07
			5, 9, 10, 8,          // 08-11: morning peak
			4, 3,                 // 12-13: lunch dip
			6, 8, 7, 5,           // 14-17: afternoon
			2, 1,                 // 18-19: tail
			0, 0, 0, 0,           // 20-23: closed
		},
		Intents: IntentDistribution{
			{Intent: calls.IntentRDV, Probability: 0.55},
			{Intent: calls.IntentInfo, Probability: 0.20},
			{Intent: calls.IntentUrgence, Probability: 0.10},
			{Intent: calls.IntentAnnulation, Probability: 0.10},
			{Intent: calls.IntentConsultation, Probability: 0.05},
		},
		Durations: map[calls.IntentCode]DurationRange{
			calls.IntentRDV:          {MinSeconds: 120, MaxSeconds: 420},
			calls.IntentInfo:         {MinSeconds: 45, MaxSeconds: 180},
			calls.IntentUrgence:      {MinSeconds: 30, MaxSeconds: 90},
			calls.IntentAnnulation:   {MinSeconds: 60, MaxSeconds: 150},
			calls.IntentConsultation: {MinSeconds: 90, MaxSeconds: 240},
		},
		FallbackCalled: "0176000000",
		BirthYearMin:   1940,
		BirthYearMax:   2005,
	}
}
