package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/renewalhq/subtrackr-backend/api/routes"
	"github.com/renewalhq/subtrackr-backend/internal/alerts"
	"github.com/renewalhq/subtrackr-backend/internal/exporting"
	"github.com/renewalhq/subtrackr-backend/internal/savings"
	"github.com/renewalhq/subtrackr-backend/internal/settings"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/config"
	"github.com/renewalhq/subtrackr-backend/pkg/db"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
	"github.com/renewalhq/subtrackr-backend/pkg/metrics"
	"github.com/renewalhq/subtrackr-backend/pkg/migrate"
	pkgredis "github.com/renewalhq/subtrackr-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to sync schema", err)
		os.Exit(1)
	}

	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, idempotency replay guard disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	settingsRepo := settings.NewRepository(dbClient.DB())
	settingsService, err := settings.NewService(settingsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())
	subscriptionsService, err := subscriptions.NewService(subscriptionsRepo, dbClient, settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	alertsRepo := alerts.NewRepository(dbClient.DB())
	alertsService, err := alerts.NewService(alertsRepo, subscriptionsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create alerts service", err)
		os.Exit(1)
	}

	savingsService, err := savings.NewService(subscriptionsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create savings service", err)
		os.Exit(1)
	}

	exportingService, err := exporting.NewService(subscriptionsService, settingsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create exporting service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	router := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Metrics:       httpMetrics,
		MetricsHTTP:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Subscriptions: subscriptionsService,
		Alerts:        alertsService,
		Savings:       savingsService,
		Settings:      settingsService,
		Exporting:     exportingService,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
