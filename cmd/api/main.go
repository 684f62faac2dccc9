package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callcenter-platform/internal/analytics"
	"callcenter-platform/internal/audit"
	"callcenter-platform/internal/auth"
	"callcenter-platform/internal/config"
	"callcenter-platform/internal/store"
	"callcenter-platform/internal/traffic"
	"callcenter-platform/pkg/logger"
	"callcenter-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	eventStore := store.NewPostgres(db)

	auditSvc := audit.NewService(audit.NewMemoryRepo())

	profile := traffic.DefaultProfile()
	profile.FallbackCalled = cfg.Seed.FallbackCalled
	profile.BirthYearMin = cfg.Seed.BirthYearMin
	profile.BirthYearMax = cfg.Seed.BirthYearMax

	seeder := traffic.NewGenerator(eventStore, traffic.GeneratorOptions{
		Locker:   traffic.NewRedisLocker(rdb),
		Recorder: auditSvc,
		Logger:   log,
	})

	dashboard := analytics.NewService(eventStore, analytics.ServiceOptions{
		Cache:  analytics.NewRedisCache(rdb, 0),
		Logger: log,
	})
	overview := analytics.NewOrchestrator(dashboard)

	// Demo centers get a fresh synthetic window at startup so the dashboard is
	// never empty. Best-effort: a failed seed leaves the API serving.
	if len(cfg.Seed.DemoCenterIDs) > 0 {
		go func() {
			seedCtx, cancel := context.WithTimeout(rootCtx, 5*time.Minute)
			defer cancel()
			if err := seeder.Run(seedCtx, cfg.Seed.DemoCenterIDs, cfg.Seed.WindowDays, profile); err != nil {
				log.Error("startup seed failed", "err", err)
			}
		}()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, routeDeps{
		cfg:        cfg,
		auth:       authManager,
		db:         db,
		eventStore: eventStore,
		seeder:     seeder,
		dashboard:  dashboard,
		overview:   overview,
		audit:      auditSvc,
		profile:    profile,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
