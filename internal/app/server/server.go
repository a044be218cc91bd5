package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"clinic/internal/domain/attendance"
	"clinic/internal/domain/audit"
	"clinic/internal/domain/auth"
	"clinic/internal/domain/expense"
	"clinic/internal/domain/leave"
	"clinic/internal/domain/payroll"
	"clinic/internal/domain/reports"
	"clinic/internal/domain/staff"
	"clinic/internal/platform/config"
	"clinic/internal/platform/db"
	"clinic/internal/platform/jobs"
	"clinic/internal/platform/metrics"
	"clinic/internal/transport/http/api"
	attendancehandler "clinic/internal/transport/http/handlers/attendance"
	audithandler "clinic/internal/transport/http/handlers/audit"
	authhandler "clinic/internal/transport/http/handlers/auth"
	diethandler "clinic/internal/transport/http/handlers/diet"
	expensehandler "clinic/internal/transport/http/handlers/expense"
	leavehandler "clinic/internal/transport/http/handlers/leave"
	payrollhandler "clinic/internal/transport/http/handlers/payroll"
	reportshandler "clinic/internal/transport/http/handlers/reports"
	staffhandler "clinic/internal/transport/http/handlers/staff"
	"clinic/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector
}

// New connects to the database, prepares the schema and assembles the router.
// Background jobs are registered but not started.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	jobsSvc := jobs.New(jobs.NewStore(pool))

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	staffSvc := staff.NewService(staff.NewStore(pool))
	leaveSvc := leave.NewService(leave.NewStore(pool))
	payrollSvc := payroll.NewService(payroll.NewStore(pool))
	attendanceSvc := attendance.NewService(attendance.NewStore(pool))
	expenseSvc := expense.NewService(expense.NewStore(pool))
	reportsSvc := reports.NewService(reports.NewStore(pool))
	entitlements := leave.Entitlements{
		Sick:   cfg.DefaultSickLeave,
		Casual: cfg.DefaultCasualLeave,
		Earned: cfg.DefaultEarnedLeave,
	}

	authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL, auditSvc)
	leaveHandler := leavehandler.NewHandler(leaveSvc, authStore, authStore, auditSvc, jobsSvc, collector, entitlements)
	payrollHandler := payrollhandler.NewHandler(payrollSvc, authStore, authStore, auditSvc, middleware.NewIdempotencyStore(pool), collector)
	jobsSvc.Every(jobs.JobLeaveBalances, cfg.LeaveBalanceInterval, leaveHandler.BalanceJob())

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.OK(w, collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		r.Post("/auth/login", authHandler.HandleLogin)
		staffhandler.NewHandler(staffSvc, authStore, authStore, auditSvc).RegisterRoutes(r)
		leaveHandler.RegisterRoutes(r)
		payrollHandler.RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc, staffSvc, authStore).RegisterRoutes(r)
		expensehandler.NewHandler(expenseSvc, authStore).RegisterRoutes(r)
		diethandler.NewHandler(authStore).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
		reportshandler.NewHandler(reportsSvc, authStore).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Jobs: jobsSvc, Metrics: collector}, nil
}

func (a *App) Close() {
	a.DB.Close()
}

// Run serves until SIGINT or SIGTERM, then drains requests and jobs.
func Run() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("clinic server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("shutdown failed", "err", err)
	}
	app.Jobs.Wait()
	slog.Info("server stopped")
}
