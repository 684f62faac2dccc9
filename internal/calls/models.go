package calls

import "time"

// CallEvent represents one tenant-scoped phone interaction, synthetic or real.
//
// Multi-tenant invariant: CenterID is required on every row and is immutable.
//
// NOTE: This is a domain model only. Events are created in bulk (by the seed
// generator or by the ingest webhook) and are read-only afterward; the only
// permitted mutation is a ranged bulk delete scoped to one center prior to a
// reseed.

type CallEvent struct {
	ID       string `json:"id" db:"id"`
	CenterID int    `json:"center_id" db:"center_id"`

	Caller string `json:"caller" db:"caller"`
	Called string `json:"called" db:"called"`

	Intent IntentCode `json:"intent" db:"intent"`
	Status CallStatus `json:"status" db:"status"`

	// DurationSeconds is the call duration in seconds.
	// Keep as an int for JSON friendliness; store as INT in Postgres.
	DurationSeconds int `json:"duration" db:"duration"`

	FirstName string    `json:"first_name,omitempty" db:"first_name"`
	LastName  string    `json:"last_name,omitempty" db:"last_name"`
	Birthdate time.Time `json:"birthdate,omitempty" db:"birthdate"`

	// Steps is the ordered list of stage labels traversed during the call.
	// It is determined solely by Intent; see StepsForIntent.
	Steps []string `json:"steps" db:"steps"`

	// Stats carries the outcome signals consumed by classification and
	// aggregation. Stored as JSONB.
	Stats CallStats `json:"stats" db:"stats"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IntentCode is the closed set of what a caller wanted.
type IntentCode string

const (
	IntentRDV          IntentCode = "RDV"
	IntentInfo         IntentCode = "INFO"
	IntentUrgence      IntentCode = "URGENCE"
	IntentAnnulation   IntentCode = "ANNULATION"
	IntentConsultation IntentCode = "CONSULTATION"
)

// Intents lists every valid IntentCode in a stable order.
func Intents() []IntentCode {
	return []IntentCode{IntentRDV, IntentInfo, IntentUrgence, IntentAnnulation, IntentConsultation}
}

// Valid reports whether the code is one of the five known intents.
func (i IntentCode) Valid() bool {
	switch i {
	case IntentRDV, IntentInfo, IntentUrgence, IntentAnnulation, IntentConsultation:
		return true
	default:
		return false
	}
}

type CallStatus string

const (
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusAbandoned  CallStatus = "abandoned"
	CallStatusInProgress CallStatus = "in_progress"
)

// CallStats is the outcome block of a call.
//
// Invariants:
// - ErrorLogic >= 0.
// - TransferReason is set only when EndReason == EndReasonTransfer.
// - Duration is the authoritative duration field for aggregation; it may
//   duplicate CallEvent.DurationSeconds.
type CallStats struct {
	// Intents are the sub-intents detected during the call, e.g. "prise_rdv".
	Intents []string `json:"intents"`

	// RdvBooked is non-zero when an appointment was actually booked.
	RdvBooked int `json:"rdv_booked"`

	Emergency bool `json:"emergency"`

	EndReason      EndReason      `json:"end_reason"`
	TransferReason TransferReason `json:"transfer_reason,omitempty"`

	// ErrorLogic counts logic errors encountered during the call.
	ErrorLogic int `json:"error_logic"`

	// Duration in seconds.
	Duration int `json:"duration"`
}

// EndReason is the terminal outcome of a call.
type EndReason string

const (
	EndReasonCompleted EndReason = "completed"
	EndReasonTransfer  EndReason = "transfer"
	EndReasonHangup    EndReason = "hangup"
	EndReasonTimeout   EndReason = "timeout"
)

// TransferReason is the closed set of why a call was handed to a human.
type TransferReason string

const (
	TransferRedirect       TransferReason = "redirect"
	TransferError          TransferReason = "error"
	TransferExamType       TransferReason = "exam_type"
	TransferExamMult       TransferReason = "exam_mult"
	TransferExamInterv     TransferReason = "exam_interv"
	TransferEmergency      TransferReason = "emergency"
	TransferDoctor         TransferReason = "doctor"
	TransferAdmin          TransferReason = "admin"
	TransferResult         TransferReason = "result"
	TransferIncident       TransferReason = "incident"
	TransferIdentification TransferReason = "identification"
)

// Valid reports whether the reason is one of the eleven known values.
func (t TransferReason) Valid() bool {
	switch t {
	case TransferRedirect, TransferError, TransferExamType, TransferExamMult,
		TransferExamInterv, TransferEmergency, TransferDoctor, TransferAdmin,
		TransferResult, TransferIncident, TransferIdentification:
		return true
	default:
		return false
	}
}

// TransferReasons lists the full enumeration in display order.
// Aggregation iterates this list so breakdown buckets stay stable.
func TransferReasons() []TransferReason {
	return []TransferReason{
		TransferRedirect,
		TransferError,
		TransferExamType,
		TransferExamMult,
		TransferExamInterv,
		TransferEmergency,
		TransferDoctor,
		TransferAdmin,
		TransferResult,
		TransferIncident,
		TransferIdentification,
	}
}

// Sub-intent labels recorded in CallStats.Intents.
const (
	SubIntentPriseRDV     = "prise_rdv"
	SubIntentRenseigne    = "renseignements"
	SubIntentModification = "modification_rdv"
	SubIntentAnnulation   = "annulation_rdv"
	SubIntentConsultation = "consultation_dossier"
)

// stepsByIntent fixes the stage list per intent. INFO calls have no steps.
var stepsByIntent = map[IntentCode][]string{
	IntentRDV:          {"identification", "recherche_creneau", "confirmation"},
	IntentInfo:         {},
	IntentUrgence:      {"identification", "evaluation_urgence"},
	IntentAnnulation:   {"identification", "recherche_rdv", "annulation"},
	IntentConsultation: {"identification", "consultation_dossier"},
}

// StepsForIntent returns a copy of the fixed step list for an intent.
// Unknown intents get an empty list rather than nil.
func StepsForIntent(i IntentCode) []string {
	steps, ok := stepsByIntent[i]
	if !ok {
		return []string{}
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}
