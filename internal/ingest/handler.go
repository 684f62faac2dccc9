package ingest

import (
	"context"
	"net/http"
	"time"

	"callcenter-platform/internal/calls"
	"callcenter-platform/pkg/logger"
	"callcenter-platform/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Store persists ingested events. Satisfied by internal/store.Postgres.
type Store interface {
	InsertEvents(ctx context.Context, events []calls.CallEvent) error
}

// InboundCallForm is the webhook payload for one completed real call.
// Business logic (classification, aggregation) is not made here; this is a
// provider-adapter-only surface that converts the payload to a CallEvent.
type InboundCallForm struct {
	CenterID int    `json:"center_id" binding:"required"`
	Caller   string `json:"caller" binding:"required"`
	Called   string `json:"called" binding:"required"`

	Intent   string `json:"intent" binding:"required"`
	Duration int    `json:"duration"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthdate string `json:"birthdate"` // "2006-01-02", optional

	RdvBooked      int    `json:"rdv_booked"`
	Emergency      bool   `json:"emergency"`
	EndReason      string `json:"end_reason"`
	TransferReason string `json:"transfer_reason"`
	ErrorLogic     int    `json:"error_logic"`

	OccurredAt time.Time `json:"occurred_at"`
}

// Handler accepts completed-call webhooks and writes them to storage.
//
// Tenant scoping: center_id comes from the payload; callers of this endpoint
// are provider integrations authenticated at the edge, not end users.
type Handler struct {
	Store Store
	Now   func() time.Time
}

func (h Handler) HandleCompletedCall(c *gin.Context) {
	log := logger.FromGin(c)

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if h.Store == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "ingest store not configured"})
		return
	}

	var form InboundCallForm
	if err := c.ShouldBindJSON(&form); err != nil {
		log.Warn("call webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ev, err := form.ToCallEvent(now())
	if err != nil {
		log.Warn("call webhook rejected", "center_id", form.CenterID, "err", err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := h.Store.InsertEvents(c.Request.Context(), []calls.CallEvent{ev}); err != nil {
		log.Error("call webhook insert failed", "center_id", ev.CenterID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "storage failed"})
		return
	}

	metrics.IngestedCalls.Inc()
	log.Info("call ingested", "center_id", ev.CenterID, "intent", ev.Intent, "duration", ev.DurationSeconds)
	c.JSON(http.StatusCreated, gin.H{"id": ev.ID})
}

// ToCallEvent validates the form and converts it to the domain event.
func (f InboundCallForm) ToCallEvent(now time.Time) (calls.CallEvent, error) {
	if f.CenterID <= 0 {
		return calls.CallEvent{}, errCenterRequired
	}

	intent := calls.IntentCode(f.Intent)
	if !intent.Valid() {
		return calls.CallEvent{}, errUnknownIntent
	}
	if f.Duration < 0 {
		return calls.CallEvent{}, errNegativeDuration
	}
	if f.ErrorLogic < 0 {
		return calls.CallEvent{}, errNegativeErrors
	}

	endReason := calls.EndReason(f.EndReason)
	if endReason == "" {
		endReason = calls.EndReasonCompleted
	}
	// Transferred calls must carry exactly one reason from the closed set;
	// aggregation buckets by that enum and drops anything outside it.
	transfer := calls.TransferReason(f.TransferReason)
	switch {
	case endReason == calls.EndReasonTransfer:
		if transfer == "" {
			return calls.CallEvent{}, errTransferReasonRequired
		}
		if !transfer.Valid() {
			return calls.CallEvent{}, errUnknownTransferReason
		}
	case transfer != "":
		return calls.CallEvent{}, errTransferWithoutTransfer
	}

	var birthdate time.Time
	if f.Birthdate != "" {
		parsed, err := time.Parse("2006-01-02", f.Birthdate)
		if err != nil {
			return calls.CallEvent{}, errBadBirthdate
		}
		birthdate = parsed
	}

	createdAt := f.OccurredAt
	if createdAt.IsZero() {
		createdAt = now
	}

	return calls.CallEvent{
		ID:              uuid.NewString(),
		CenterID:        f.CenterID,
		Caller:          f.Caller,
		Called:          f.Called,
		Intent:          intent,
		Status:          calls.CallStatusCompleted,
		DurationSeconds: f.Duration,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		Birthdate:       birthdate,
		Steps:           calls.StepsForIntent(intent),
		Stats: calls.CallStats{
			Intents:        subIntentsFor(intent),
			RdvBooked:      f.RdvBooked,
			Emergency:      f.Emergency,
			EndReason:      endReason,
			TransferReason: transfer,
			ErrorLogic:     f.ErrorLogic,
			Duration:       f.Duration,
		},
		CreatedAt: createdAt,
	}, nil
}

func subIntentsFor(intent calls.IntentCode) []string {
	switch intent {
	case calls.IntentRDV:
		return []string{calls.SubIntentPriseRDV}
	case calls.IntentInfo:
		return []string{calls.SubIntentRenseigne}
	case calls.IntentAnnulation:
		return []string{calls.SubIntentAnnulation}
	case calls.IntentConsultation:
		return []string{calls.SubIntentConsultation}
	default:
		return []string{}
	}
}
