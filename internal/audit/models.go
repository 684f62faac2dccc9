package audit

import "time"

// Entry is an immutable, append-only operational audit record.
//
// Invariants:
// - Entries are never updated or deleted.
// - center_id is required for tenancy isolation.
// - Recording is best-effort; critical flows must not block on audit failures.

type Entry struct {
	ID       string `json:"id" db:"id"`
	CenterID int    `json:"center_id" db:"center_id"`

	// Type indicates the business category of the record.
	Type EntryType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the action, when any.
	// Seed runs triggered by schedulers leave it empty.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Seed-run payload.
	WindowDays    int   `json:"window_days,omitempty" db:"window_days"`
	EventsDeleted int64 `json:"events_deleted,omitempty" db:"events_deleted"`
	EventsWritten int   `json:"events_written,omitempty" db:"events_written"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Error carries the failure text of an unsuccessful run.
	Error string `json:"error,omitempty" db:"error"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EntryType string

const (
	EntryTypeSeedRun     EntryType = "seed_run"
	EntryTypeAdminAction EntryType = "admin_action"
)
