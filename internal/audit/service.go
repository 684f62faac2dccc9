package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Entry) error
}

var ErrInvalidEntry = errors.New("audit: invalid entry")

// Service records internal operational history.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
	log   *slog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, log: slog.Default()}
}

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CenterID <= 0 {
		return ErrInvalidEntry
	}
	if e.Type == "" {
		return ErrInvalidEntry
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// RecordSeedRun logs one finished per-center seed run. It satisfies the
// generator's RunRecorder contract and never propagates its own failure.
func (s *Service) RecordSeedRun(ctx context.Context, centerID, windowDays int, deleted int64, inserted int, runErr error) {
	e := Entry{
		CenterID:      centerID,
		Type:          EntryTypeSeedRun,
		WindowDays:    windowDays,
		EventsDeleted: deleted,
		EventsWritten: inserted,
		Message:       "synthetic reseed",
	}
	if runErr != nil {
		e.Error = runErr.Error()
	}
	if err := s.Append(ctx, e); err != nil {
		s.log.Warn("audit append failed", "center_id", centerID, "err", err)
	}
}

// LogAdminAction records a user-triggered admin operation.
func (s *Service) LogAdminAction(ctx context.Context, centerID int, actorUserID, actorRole, message string) error {
	return s.Append(ctx, Entry{
		CenterID:    centerID,
		Type:        EntryTypeAdminAction,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		Message:     message,
	})
}

// Describe renders an entry for ops tooling.
func Describe(e Entry) string {
	switch e.Type {
	case EntryTypeSeedRun:
		if e.Error != "" {
			return fmt.Sprintf("seed center=%d days=%d FAILED: %s", e.CenterID, e.WindowDays, e.Error)
		}
		return fmt.Sprintf("seed center=%d days=%d deleted=%d written=%d", e.CenterID, e.WindowDays, e.EventsDeleted, e.EventsWritten)
	default:
		return fmt.Sprintf("%s center=%d %s", e.Type, e.CenterID, e.Message)
	}
}
