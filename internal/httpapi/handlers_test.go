package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"callcenter-platform/internal/analytics"
	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/calls"
	"callcenter-platform/internal/config"
	"callcenter-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

func testManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m
}

func withIdentity(id auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func TestLoginIssuesPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handlers{Auth: testManager(t)}

	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"user_id":"u1","center_id":2,"role":"agent"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["access_token"] == "" || body["refresh_token"] == "" {
		t.Fatalf("expected token pair, got %v", body)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := Handlers{Auth: testManager(t)}

	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := analytics.NewMemoryRepo()
	now := time.Now().UTC()
	repo.Events = []calls.CallEvent{
		{CenterID: 1, CreatedAt: now.Add(-time.Hour), Stats: calls.CallStats{Duration: 60, RdvBooked: 1}},
		{CenterID: 9, CreatedAt: now.Add(-time.Hour), Stats: calls.CallStats{Duration: 60}},
	}
	svc := analytics.NewService(repo, analytics.ServiceOptions{})
	h := Handlers{Dashboard: svc}

	r := gin.New()
	r.GET("/dashboard",
		withIdentity(auth.Identity{UserID: "u", CenterID: 1, Role: rbac.RoleAgent}),
		h.GetDashboard)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard?period=7d", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res analytics.Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Total != 1 {
		t.Fatalf("expected only the caller's center events, got total %d", res.Total)
	}
}

func TestGetDashboardRejectsBadPeriod(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := analytics.NewService(analytics.NewMemoryRepo(), analytics.ServiceOptions{})
	h := Handlers{Dashboard: svc}

	r := gin.New()
	r.GET("/dashboard",
		withIdentity(auth.Identity{UserID: "u", CenterID: 1, Role: rbac.RoleAgent}),
		h.GetDashboard)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard?period=90d", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

type fakeCallReader struct {
	events []calls.CallEvent
}

func (f *fakeCallReader) ListEvents(_ context.Context, centerID int, _, _ time.Time) ([]calls.CallEvent, error) {
	out := []calls.CallEvent{}
	for _, e := range f.events {
		if e.CenterID == centerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeCallReader) ListEventsByIntent(ctx context.Context, centerID int, from, to time.Time, intent calls.IntentCode) ([]calls.CallEvent, error) {
	all, _ := f.ListEvents(ctx, centerID, from, to)
	out := []calls.CallEvent{}
	for _, e := range all {
		if e.Intent == intent {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestListCallsFiltersByIntent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reader := &fakeCallReader{events: []calls.CallEvent{
		{CenterID: 1, Intent: calls.IntentRDV},
		{CenterID: 1, Intent: calls.IntentInfo},
		{CenterID: 2, Intent: calls.IntentRDV},
	}}
	h := Handlers{Calls: reader}

	r := gin.New()
	r.GET("/calls",
		withIdentity(auth.Identity{UserID: "u", CenterID: 1, Role: rbac.RoleAgent}),
		h.ListCalls)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/calls?intent=RDV", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Total int               `json:"total"`
		Calls []calls.CallEvent `json:"calls"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 1 || len(body.Calls) != 1 || body.Calls[0].Intent != calls.IntentRDV {
		t.Fatalf("unexpected call list: %+v", body)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/calls?intent=PIZZA", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown intent, got %d", w.Code)
	}
}

func TestGetOverviewFansOutManagedCenters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := analytics.NewMemoryRepo()
	now := time.Now().UTC()
	repo.Events = []calls.CallEvent{
		{CenterID: 1, CreatedAt: now.Add(-time.Hour), Stats: calls.CallStats{Duration: 30}},
		{CenterID: 2, CreatedAt: now.Add(-time.Hour), Stats: calls.CallStats{Duration: 30}},
		{CenterID: 2, CreatedAt: now.Add(-2 * time.Hour), Stats: calls.CallStats{Duration: 30}},
	}
	svc := analytics.NewService(repo, analytics.ServiceOptions{})
	h := Handlers{Overview: analytics.NewOrchestrator(svc)}

	r := gin.New()
	r.GET("/overview",
		withIdentity(auth.Identity{UserID: "u", CenterID: 1, ManagedCenters: []int{1, 2}, Role: rbac.RoleManager}),
		h.GetOverview)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		Period  analytics.Period         `json:"period"`
		Centers map[int]analytics.Result `json:"centers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Period != analytics.Period7d {
		t.Fatalf("expected default 7d period, got %q", body.Period)
	}
	if len(body.Centers) != 2 || body.Centers[1].Total != 1 || body.Centers[2].Total != 2 {
		t.Fatalf("unexpected overview: %+v", body.Centers)
	}
}
