package traffic

import (
	"math"
	"math/rand"
	"time"

	"callcenter-platform/internal/calls"
)

// defaultHour is returned when every hour weight is zero, so a degenerate
// table never divides by zero.
const defaultHour = 12

// fallbackDuration bounds the duration draw for intents missing from the
// profile's duration table.
var fallbackDuration = DurationRange{MinSeconds: 30, MaxSeconds: 180}

// Sampler performs the weighted random draws behind synthetic traffic.
//
// The random source is injectable so tests can pin a seed; it is NOT
// goroutine-safe, so each concurrent seed run must own its own Sampler.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler wraps the given source. A nil source gets a time-seeded one,
// which is the production default.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// DayVolume decides how many events occur on the given calendar day.
//
// A multiplier is drawn uniformly from the weekday's band, applied to the
// base bounds, and the result drawn uniformly from the scaled bounds
// inclusive. Over repeated draws for a fixed weekday the result stays within
// [round(baseMin*minMul), round(baseMax*maxMul)].
func (s *Sampler) DayVolume(day time.Time, p Profile) int {
	band, ok := p.Bands[day.Weekday()]
	if !ok {
		band = Band{MinMultiplier: 1, MaxMultiplier: 1}
	}

	mult := band.MinMultiplier + s.rng.Float64()*(band.MaxMultiplier-band.MinMultiplier)

	min := int(math.Round(float64(p.BaseMin) * mult))
	if min < 0 {
		min = 0
	}
	max := int(math.Round(float64(p.BaseMax) * mult))
	if max < min {
		max = min
	}
	return min + s.rng.Intn(max-min+1)
}

// Hour draws an hour of day from the weight table.
//
// The draw subtracts weights in fixed hour order (0..23) from a uniform
// value in [0, sum], so zero-weight hours are never selected.
func (s *Sampler) Hour(w HourWeights) int {
	sum := 0.0
	for _, weight := range w {
		sum += weight
	}
	if sum <= 0 {
		return defaultHour
	}

	r := s.rng.Float64() * sum
	for h := 0; h < 24; h++ {
		if w[h] == 0 {
			continue
		}
		r -= w[h]
		if r <= 0 {
			return h
		}
	}
	// Float error can leave a sliver; land on the last weighted hour.
	for h := 23; h >= 0; h-- {
		if w[h] > 0 {
			return h
		}
	}
	return defaultHour
}

// Intent draws an intent from the ordered distribution by cumulative
// probability.
func (s *Sampler) Intent(dist IntentDistribution) calls.IntentCode {
	return pickIntent(s.rng.Float64(), dist)
}

// pickIntent returns the first entry whose cumulative probability reaches r.
// If float error leaves no match, the last entry wins; an empty distribution
// yields INFO rather than panicking.
func pickIntent(r float64, dist IntentDistribution) calls.IntentCode {
	if len(dist) == 0 {
		return calls.IntentInfo
	}
	cum := 0.0
	for _, iw := range dist {
		cum += iw.Probability
		if cum >= r {
			return iw.Intent
		}
	}
	return dist[len(dist)-1].Intent
}

// Duration draws a uniform integer duration for the intent, in seconds.
func (s *Sampler) Duration(intent calls.IntentCode, durations map[calls.IntentCode]DurationRange) int {
	d, ok := durations[intent]
	if !ok || d.MaxSeconds < d.MinSeconds || d.MinSeconds < 0 {
		d = fallbackDuration
	}
	return d.MinSeconds + s.rng.Intn(d.MaxSeconds-d.MinSeconds+1)
}

// intn is a helper for uniform draws in [0, n) used by the synthesizer.
func (s *Sampler) intn(n int) int { return s.rng.Intn(n) }
