package traffic

import (
	"fmt"
	"time"

	"callcenter-platform/internal/calls"

	"github.com/google/uuid"
)

// Synthesizer composes one complete CallEvent from sampler draws.
//
// It is intentionally dumb: all statistical decisions live in Sampler, all
// schema decisions live in internal/calls.
type Synthesizer struct {
	sampler *Sampler
	profile Profile
}

func NewSynthesizer(sampler *Sampler, profile Profile) *Synthesizer {
	return &Synthesizer{sampler: sampler, profile: profile}
}

var firstNames = []string{
	"Marie", "Jean", "Sophie", "Pierre", "Camille", "Luc", "Nathalie",
	"Thomas", "Isabelle", "Antoine", "Claire", "Julien", "Emma", "Nicolas",
	"Louise", "Hugo", "Chantal", "Mathieu", "Amelie", "Olivier",
}

var lastNames = []string{
	"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit",
	"Durand", "Leroy", "Moreau", "Simon", "Laurent", "Lefebvre", "Michel",
	"Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier",
}

// Event builds one synthetic call for the given center on the given day.
// The day's date is kept; hour comes from the weight table, minute and
// second are uniform.
func (sy *Synthesizer) Event(centerID int, day time.Time, called string) calls.CallEvent {
	intent := sy.sampler.Intent(sy.profile.Intents)
	duration := sy.sampler.Duration(intent, sy.profile.Durations)

	hour := sy.sampler.Hour(sy.profile.Hours)
	minute := sy.sampler.intn(60)
	second := sy.sampler.intn(60)
	createdAt := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, time.UTC)

	if called == "" {
		called = sy.profile.FallbackCalled
	}

	return calls.CallEvent{
		ID:              uuid.NewString(),
		CenterID:        centerID,
		Caller:          sy.callerNumber(),
		Called:          called,
		Intent:          intent,
		Status:          calls.CallStatusCompleted,
		DurationSeconds: duration,
		FirstName:       firstNames[sy.sampler.intn(len(firstNames))],
		LastName:        lastNames[sy.sampler.intn(len(lastNames))],
		Birthdate:       sy.birthdate(),
		Steps:           calls.StepsForIntent(intent),
		Stats:           sy.stats(intent, duration),
		CreatedAt:       createdAt,
	}
}

// callerNumber produces a random French-style mobile number.
func (sy *Synthesizer) callerNumber() string {
	prefix := 6
	if sy.sampler.intn(2) == 1 {
		prefix = 7
	}
	return fmt.Sprintf("0%d%08d", prefix, sy.sampler.intn(100000000))
}

// birthdate samples uniformly between the configured years. Days cap at 28
// so no month overflows.
func (sy *Synthesizer) birthdate() time.Time {
	minYear, maxYear := sy.profile.BirthYearMin, sy.profile.BirthYearMax
	if minYear == 0 || maxYear < minYear {
		minYear, maxYear = 1940, 2005
	}
	year := minYear + sy.sampler.intn(maxYear-minYear+1)
	month := time.Month(1 + sy.sampler.intn(12))
	dayOfMonth := 1 + sy.sampler.intn(28)
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

// stats records the sampled intent as an outcome block. Synthetic calls end
// normally (never transferred); emergencies only carry the flag.
func (sy *Synthesizer) stats(intent calls.IntentCode, duration int) calls.CallStats {
	s := calls.CallStats{
		Intents:   []string{},
		EndReason: calls.EndReasonCompleted,
		Duration:  duration,
	}
	switch intent {
	case calls.IntentRDV:
		s.Intents = append(s.Intents, calls.SubIntentPriseRDV)
		s.RdvBooked = 1
	case calls.IntentInfo:
		s.Intents = append(s.Intents, calls.SubIntentRenseigne)
	case calls.IntentUrgence:
		s.Emergency = true
	case calls.IntentAnnulation:
		s.Intents = append(s.Intents, calls.SubIntentAnnulation)
	case calls.IntentConsultation:
		s.Intents = append(s.Intents, calls.SubIntentConsultation)
	}
	return s
}
