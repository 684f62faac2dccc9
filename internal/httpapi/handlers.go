package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"callcenter-platform/internal/analytics"
	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/traffic"
	"callcenter-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallReader lists stored events for the call-log views.
// Satisfied by internal/store.Postgres.
type CallReader interface {
	ListEvents(ctx context.Context, centerID int, from, to time.Time) ([]calls.CallEvent, error)
	ListEventsByIntent(ctx context.Context, centerID int, from, to time.Time, intent calls.IntentCode) ([]calls.CallEvent, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth      *auth.Manager
	Dashboard *analytics.Service
	Overview  *analytics.Orchestrator
	Seeder    *traffic.Generator
	Calls     CallReader
	Audit     *audit.Service

	// Profile and SeedWindowDays parameterize admin-triggered reseeds.
	Profile        traffic.Profile
	SeedWindowDays int
}

// --- Auth ---

type loginRequest struct {
	UserID         string `json:"user_id"`
	CenterID       int    `json:"center_id"`
	ManagedCenters []int  `json:"managed_center_ids"`
	Role           string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a demo-grade endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.CenterID <= 0 || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, center_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), auth.Identity{
		UserID:         req.UserID,
		CenterID:       req.CenterID,
		ManagedCenters: req.ManagedCenters,
		Role:           req.Role,
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Dashboard ---

// GetDashboard returns the aggregated metric bundle for the caller's own
// center. Period comes from the query string and defaults to 7 days.
func (h Handlers) GetDashboard(c *gin.Context) {
	if h.Dashboard == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	centerID, err := auth.CenterID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "center_id required"})
		return
	}

	period, ok := periodFromQuery(c)
	if !ok {
		return
	}

	res, err := h.Dashboard.Aggregate(c.Request.Context(), centerID, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromGin(c).Error("dashboard aggregation failed", "center_id", centerID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetOverview fans the aggregation out across every center the caller
// manages. A refresh started while an older one is in flight supersedes it;
// the superseded request gets 409 and no payload.
func (h Handlers) GetOverview(c *gin.Context) {
	if h.Overview == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "analytics not configured"})
		return
	}
	centerIDs := auth.ManagedCenters(c.Request.Context())
	if len(centerIDs) == 0 {
		// A manager with no managed list still sees their own center.
		centerID, err := auth.CenterID(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "center_id required"})
			return
		}
		centerIDs = []int{centerID}
	}

	period, ok := periodFromQuery(c)
	if !ok {
		return
	}

	// Supersede bookkeeping is scoped to this caller; other managers'
	// refreshes must not cancel this one.
	viewKey, _ := auth.UserID(c.Request.Context())
	results, err := h.Overview.Refresh(c.Request.Context(), viewKey, centerIDs, period)
	if err != nil {
		if errors.Is(err, analytics.ErrSuperseded) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "superseded by a newer refresh"})
			return
		}
		logger.FromGin(c).Error("overview refresh failed", "centers", len(centerIDs), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "centers": results})
}

// --- Call log ---

// ListCalls returns the caller's raw events for the selected period, newest
// window first in storage order, optionally filtered to one intent.
func (h Handlers) ListCalls(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store not configured"})
		return
	}
	centerID, err := auth.CenterID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "center_id required"})
		return
	}

	period, ok := periodFromQuery(c)
	if !ok {
		return
	}
	now := time.Now().UTC()
	from := now.Add(-time.Duration(period.Days()) * 24 * time.Hour)

	var events []calls.CallEvent
	if raw := c.Query("intent"); raw != "" {
		intent := calls.IntentCode(raw)
		if !intent.Valid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown intent"})
			return
		}
		events, err = h.Calls.ListEventsByIntent(c.Request.Context(), centerID, from, now, intent)
	} else {
		events, err = h.Calls.ListEvents(c.Request.Context(), centerID, from, now)
	}
	if err != nil {
		logger.FromGin(c).Error("call list failed", "center_id", centerID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(events), "calls": events})
}

// --- Admin seeding ---

type adminSeedRequest struct {
	CenterIDs  []int `json:"center_ids"`
	WindowDays int   `json:"window_days"`
}

// AdminSeed regenerates the synthetic dataset for the given centers.
// RBAC: admin or super_admin.
func (h Handlers) AdminSeed(c *gin.Context) {
	if h.Seeder == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "seeder not configured"})
		return
	}
	var req adminSeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(req.CenterIDs) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "center_ids required"})
		return
	}
	windowDays := req.WindowDays
	if windowDays <= 0 {
		windowDays = h.SeedWindowDays
	}

	if h.Audit != nil {
		actorID, _ := auth.UserID(c.Request.Context())
		actorRole, _ := auth.Role(c.Request.Context())
		for _, id := range req.CenterIDs {
			if err := h.Audit.LogAdminAction(c.Request.Context(), id, actorID, actorRole, "reseed requested"); err != nil {
				logger.FromGin(c).Warn("audit write failed", "center_id", id, "err", err)
			}
		}
	}

	err := h.Seeder.Run(c.Request.Context(), req.CenterIDs, windowDays, h.Profile)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "seeded", "centers": len(req.CenterIDs), "window_days": windowDays})
	case errors.Is(err, traffic.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, traffic.ErrSeedInProgress):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "seed already in progress"})
	default:
		logger.FromGin(c).Error("seed run failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "seed failed"})
	}
}

func periodFromQuery(c *gin.Context) (analytics.Period, bool) {
	raw := c.DefaultQuery("period", string(analytics.Period7d))
	period, err := analytics.ParsePeriod(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "period must be one of 24h, 7d, 30d"})
		return "", false
	}
	return period, true
}

// Convenience middleware bundles.

func RequireCenterAndAnyRole(roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{rbac.RequireCenter(), rbac.RequireAnyRole(roles...)}
}
