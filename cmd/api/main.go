package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tdbstore/tdb-backend/api/routes"
	"github.com/tdbstore/tdb-backend/internal/orders"
	"github.com/tdbstore/tdb-backend/internal/payments"
	"github.com/tdbstore/tdb-backend/pkg/config"
	"github.com/tdbstore/tdb-backend/pkg/db"
	"github.com/tdbstore/tdb-backend/pkg/logger"
	"github.com/tdbstore/tdb-backend/pkg/metrics"
	"github.com/tdbstore/tdb-backend/pkg/migrate"
	"github.com/tdbstore/tdb-backend/pkg/paypal"
	"github.com/tdbstore/tdb-backend/pkg/redis"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	ordersRepo := orders.NewRepository(dbClient.DB())

	gateway, err := paypal.NewClient(context.Background(), cfg.PayPal, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap paypal client", err)
		os.Exit(1)
	}
	gateway.
		WithAudit(payments.NewAuditRecorder(ordersRepo, logg)).
		WithMetrics(gatewayMetrics)

	paymentsService, err := payments.NewService(dbClient, ordersRepo, gateway, cfg.Checkout, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	// hosting platforms inject PORT over the configured default
	addr := ":" + config.Getenv("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			RedisClient: redisClient,
			Payments:    paymentsService,
			Registry:    registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
