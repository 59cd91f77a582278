package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"leadflow/internal/activity"
	activityhandler "leadflow/internal/activity/handler"
	"leadflow/internal/audit"
	"leadflow/internal/dashboard"
	"leadflow/internal/identity"
	"leadflow/internal/identity/revocation"
	"leadflow/internal/lead"
	leadhandler "leadflow/internal/lead/handler"
	"leadflow/internal/platform/config"
	"leadflow/internal/platform/httpserver"
	"leadflow/internal/platform/logger"
	"leadflow/internal/platform/metrics"
	"leadflow/internal/platform/middleware"
	platformredis "leadflow/internal/platform/redis"
	"leadflow/internal/realtime"
	httptransport "leadflow/internal/transport/http"
	"leadflow/internal/user"
	userhandler "leadflow/internal/user/handler"
	txcontext "leadflow/pkg/platform/tx"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores run against PostgreSQL when DATABASE_URL is set, otherwise the
	// in-memory implementations keep the process self-contained for local use.
	var (
		db             *sql.DB
		beginner       txcontext.Beginner
		userStore      user.Store
		leadStore      lead.Store
		auditStore     audit.Store
		activityStore  activity.Store
		dashboardLeads dashboard.LeadSource
		dashboardUsers dashboard.UserSource
		dashboardActs  dashboard.ActivitySource
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping database", "error", err)
			os.Exit(1)
		}
		beginner = db
		pgLeads := lead.NewPostgresStore(db)
		pgUsers := user.NewPostgresStore(db)
		pgActs := activity.NewPostgresStore(db)
		userStore, leadStore, auditStore, activityStore = pgUsers, pgLeads, audit.NewPostgresStore(db), pgActs
		dashboardLeads, dashboardUsers, dashboardActs = pgLeads, pgUsers, pgActs
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		memLeads := lead.NewInMemoryStore()
		memUsers := user.NewInMemoryStore()
		memActs := activity.NewInMemoryStore()
		userStore, leadStore, auditStore, activityStore = memUsers, memLeads, audit.NewInMemoryStore(), memActs
		dashboardLeads, dashboardUsers, dashboardActs = memLeads, memUsers, memActs
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}

	jwtService := identity.NewJWTService(cfg.JWTSigningKey, "leadflow", "leadflow")

	var trl interface {
		Revoke(ctx context.Context, jti string, ttl time.Duration) error
		IsRevoked(ctx context.Context, jti string) (bool, error)
	}
	if redisClient != nil {
		trl = revocation.NewRedisTRL(redisClient.Client)
	} else {
		trl = revocation.NewMemoryTRL()
	}

	userService := user.NewService(userStore, jwtService, trl, cfg.TokenTTL, log)

	registry := realtime.NewRegistry(m)
	dispatcher := realtime.NewDispatcher(registry, userService, log, m)
	gate := realtime.NewGate(jwtService, registry, log, m, cfg.AllowedOrigins)

	leadService := lead.NewService(leadStore, audit.NewRecorder(auditStore), dispatcher, beginner, log, m)
	activityService := activity.NewService(activityStore, leadStore, dispatcher, log)
	dashboardService := dashboard.NewService(dashboardLeads, dashboardUsers, dashboardActs)

	requireAuth := middleware.RequireAuth(jwtService, jwtService, trl, log)

	checks := map[string]func() error{}
	if db != nil {
		checks["postgres"] = func() error { return db.Ping() }
	}
	if redisClient != nil {
		checks["redis"] = func() error { return redisClient.Health(context.Background()) }
	}

	router := httptransport.NewRouter(log, httptransport.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Gate:           gate,
		HealthChecks:   checks,
	},
		userhandler.New(userService, requireAuth, log),
		leadhandler.New(leadService, requireAuth, log),
		activityhandler.New(activityService, requireAuth, log),
		dashboard.NewHandler(dashboardService, requireAuth, log),
	)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting leadflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		registry.Close("server shutdown")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
