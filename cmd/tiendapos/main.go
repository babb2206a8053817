package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/tiendapos/tiendapos/internal/app"
	"github.com/tiendapos/tiendapos/internal/auth"
	"github.com/tiendapos/tiendapos/internal/catalog"
	"github.com/tiendapos/tiendapos/internal/dashboard"
	"github.com/tiendapos/tiendapos/internal/ledger"
	"github.com/tiendapos/tiendapos/internal/observability"
	"github.com/tiendapos/tiendapos/internal/platform/cache"
	"github.com/tiendapos/tiendapos/internal/platform/db"
	"github.com/tiendapos/tiendapos/internal/purchases"
	"github.com/tiendapos/tiendapos/internal/sales"
	"github.com/tiendapos/tiendapos/internal/shared"
	"github.com/tiendapos/tiendapos/internal/tenant"
	"github.com/tiendapos/tiendapos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGPingTimeout)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	registry := tenant.NewRegistry(pool)
	if err := registry.EnsureActivationCodes(ctx); err != nil {
		logger.Error("seed activation codes", slog.Any("error", err))
		os.Exit(1)
	}
	provisioner := tenant.NewProvisioner(pool, logger)

	sessionManager := shared.NewSessionManager(redisClient, "tienda_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	validate := validator.New()
	metrics := observability.NewMetrics()

	authService := auth.NewService(registry, provisioner)
	authHandler := auth.NewHandler(logger, authService, sessionManager, validate)
	catalogHandler := catalog.NewHandler(logger, validate)
	salesHandler := sales.NewHandler(logger, validate, metrics)
	purchasesHandler := purchases.NewHandler(logger, validate, metrics)
	ledgerHandler := ledger.NewHandler(logger)
	dashboardHandler := dashboard.NewHandler(logger, redisClient, cfg.DashboardCacheTTL)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		Pool:             pool,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		SalesHandler:     salesHandler,
		PurchasesHandler: purchasesHandler,
		LedgerHandler:    ledgerHandler,
		DashboardHandler: dashboardHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
