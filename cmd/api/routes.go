package main

import (
	"database/sql"
	"net/http"
	"time"

	"callcenter-platform/internal/analytics"
	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/config"
	"callcenter-platform/internal/httpapi"
	"callcenter-platform/internal/ingest"
	"callcenter-platform/internal/rbac"
	"callcenter-platform/internal/store"
	"callcenter-platform/internal/traffic"
	"callcenter-platform/pkg/metrics"
	"callcenter-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routeDeps struct {
	cfg        config.Config
	auth       *auth.Manager
	db         *sql.DB
	eventStore *store.Postgres
	seeder     *traffic.Generator
	dashboard  *analytics.Service
	overview   *analytics.Orchestrator
	audit      *audit.Service
	profile    traffic.Profile
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	h := httpapi.Handlers{
		Auth:           deps.auth,
		Dashboard:      deps.dashboard,
		Overview:       deps.overview,
		Seeder:         deps.seeder,
		Calls:          deps.eventStore,
		Audit:          deps.audit,
		Profile:        deps.profile,
		SeedWindowDays: deps.cfg.Seed.WindowDays,
	}

	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Provider webhooks (public).
	// NOTE: protect with provider signature validation before exposing beyond
	// trusted networks.
	{
		wh := ingest.Handler{Store: deps.eventStore}
		r.POST("/webhooks/calls", wh.HandleCompletedCall)
	}

	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(deps.auth))
	{
		v1.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			cid, _ := auth.CenterID(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(http.StatusOK, gin.H{"user_id": uid, "center_id": cid, "role": role})
		})

		// DASHBOARD routes
		dashboard := v1.Group("/dashboard")
		dashboard.Use(httpapi.RequireCenterAndAnyRole(rbac.RoleAgent, rbac.RoleManager, rbac.RoleAdmin)...)
		{
			dashboard.GET("", h.GetDashboard)
		}

		// CALLS routes (raw call log)
		callsGroup := v1.Group("/calls")
		callsGroup.Use(httpapi.RequireCenterAndAnyRole(rbac.RoleAgent, rbac.RoleManager, rbac.RoleAdmin)...)
		{
			callsGroup.GET("", h.ListCalls)
		}

		// OVERVIEW routes (multi-center fan-out for managers)
		overview := v1.Group("/overview")
		overview.Use(httpapi.RequireCenterAndAnyRole(rbac.RoleManager, rbac.RoleAdmin)...)
		{
			overview.GET("", h.GetOverview)
		}

		// ADMIN routes
		admin := v1.Group("/admin")
		admin.Use(httpapi.RequireCenterAndAnyRole(rbac.RoleAdmin)...)
		{
			admin.GET("/ping", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})
			admin.POST("/seed", h.AdminSeed)
		}
	}
}
