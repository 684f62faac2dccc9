package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/pkg/utils"
)

// NOTE: This store assumes the following tables exist:
// - call_events (id, center_id, caller, called, intent, status, duration,
//   first_name, last_name, birthdate, steps JSONB, stats JSONB, created_at)
// - centers (id, contact_number, ...)
//
// call_events is append-only except for the ranged delete used by reseeds.

// Postgres implements the event store over database/sql with the pgx driver.
// It satisfies both the generator's write contract and the analytics read
// contract.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const eventColumns = `id, center_id, caller, called, intent, status, duration,
first_name, last_name, birthdate, steps, stats, created_at`

// InsertEvents writes a batch of events in one multi-row statement inside a
// transaction. The batch commits or rolls back as a whole; the generator
// relies on no partial day ever being visible.
func (p *Postgres) InsertEvents(ctx context.Context, events []calls.CallEvent) error {
	if len(events) == 0 {
		return nil
	}

	const cols = 13
	var b strings.Builder
	b.WriteString(`INSERT INTO call_events (` + eventColumns + `) VALUES `)
	args := make([]any, 0, len(events)*cols)
	for i, e := range events {
		steps, err := json.Marshal(e.Steps)
		if err != nil {
			return fmt.Errorf("store: marshal steps: %w", err)
		}
		stats, err := json.Marshal(e.Stats)
		if err != nil {
			return fmt.Errorf("store: marshal stats: %w", err)
		}

		if i > 0 {
			b.WriteString(",")
		}
		base := i * cols
		b.WriteString("(")
		for c := 1; c <= cols; c++ {
			if c > 1 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "$%d", base+c)
		}
		b.WriteString(")")

		args = append(args,
			e.ID,
			e.CenterID,
			e.Caller,
			e.Called,
			string(e.Intent),
			string(e.Status),
			e.DurationSeconds,
			e.FirstName,
			e.LastName,
			e.Birthdate,
			steps,
			stats,
			e.CreatedAt,
		)
	}

	query := b.String()
	return utils.WithTx(ctx, p.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	})
}

// DeleteEvents removes one center's events whose created_at falls in
// [from, to). It returns the number of rows deleted.
func (p *Postgres) DeleteEvents(ctx context.Context, centerID int, from, to time.Time) (int64, error) {
	const q = `
DELETE FROM call_events
WHERE center_id = $1 AND created_at >= $2 AND created_at < $3
`
	res, err := p.db.ExecContext(ctx, q, centerID, from, to)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListEvents returns one center's events in [from, to), oldest first.
func (p *Postgres) ListEvents(ctx context.Context, centerID int, from, to time.Time) ([]calls.CallEvent, error) {
	const q = `
SELECT ` + eventColumns + `
FROM call_events
WHERE center_id = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`
	rows, err := p.db.QueryContext(ctx, q, centerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListEventsByIntent is ListEvents restricted to one intent.
func (p *Postgres) ListEventsByIntent(ctx context.Context, centerID int, from, to time.Time, intent calls.IntentCode) ([]calls.CallEvent, error) {
	const q = `
SELECT ` + eventColumns + `
FROM call_events
WHERE center_id = $1 AND created_at >= $2 AND created_at < $3 AND intent = $4
ORDER BY created_at
`
	rows, err := p.db.QueryContext(ctx, q, centerID, from, to, string(intent))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]calls.CallEvent, error) {
	out := make([]calls.CallEvent, 0)
	for rows.Next() {
		var (
			e         calls.CallEvent
			intent    string
			status    string
			birthdate sql.NullTime
			steps     []byte
			stats     []byte
		)
		if err := rows.Scan(
			&e.ID,
			&e.CenterID,
			&e.Caller,
			&e.Called,
			&intent,
			&status,
			&e.DurationSeconds,
			&e.FirstName,
			&e.LastName,
			&birthdate,
			&steps,
			&stats,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Intent = calls.IntentCode(intent)
		e.Status = calls.CallStatus(status)
		if birthdate.Valid {
			e.Birthdate = birthdate.Time
		}
		if len(steps) > 0 {
			if err := json.Unmarshal(steps, &e.Steps); err != nil {
				return nil, fmt.Errorf("store: unmarshal steps: %w", err)
			}
		}
		if len(stats) > 0 {
			if err := json.Unmarshal(stats, &e.Stats); err != nil {
				return nil, fmt.Errorf("store: unmarshal stats: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ContactNumber returns the center's configured contact number, or "" when
// the center has none (callers fall back to the profile default).
func (p *Postgres) ContactNumber(ctx context.Context, centerID int) (string, error) {
	const q = `
SELECT COALESCE(contact_number, '')
FROM centers
WHERE id = $1
`
	var number string
	if err := p.db.QueryRowContext(ctx, q, centerID).Scan(&number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}
