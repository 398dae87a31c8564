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

	"github.com/NghaReformer/eventune-backend/api/routes"
	"github.com/NghaReformer/eventune-backend/internal/authz"
	"github.com/NghaReformer/eventune-backend/internal/notifications"
	"github.com/NghaReformer/eventune-backend/internal/orders"
	"github.com/NghaReformer/eventune-backend/internal/payments"
	"github.com/NghaReformer/eventune-backend/internal/refunds"
	"github.com/NghaReformer/eventune-backend/internal/webhooks"
	"github.com/NghaReformer/eventune-backend/pkg/config"
	"github.com/NghaReformer/eventune-backend/pkg/db"
	"github.com/NghaReformer/eventune-backend/pkg/logger"
	"github.com/NghaReformer/eventune-backend/pkg/metrics"
	"github.com/NghaReformer/eventune-backend/pkg/migrate"
	"github.com/NghaReformer/eventune-backend/pkg/notchpay"
	"github.com/NghaReformer/eventune-backend/pkg/pubsub"
	"github.com/NghaReformer/eventune-backend/pkg/redis"
	"github.com/NghaReformer/eventune-backend/pkg/stripe"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap stripe", err)
		os.Exit(1)
	}
	notchPayClient, err := notchpay.NewClient(ctx, cfg.NotchPay, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap notchpay", err)
		os.Exit(1)
	}

	stripeVerifier, err := payments.NewStripeVerifier(stripeClient)
	if err != nil {
		logg.Error(ctx, "failed to create stripe verifier", err)
		os.Exit(1)
	}
	notchPayVerifier, err := payments.NewNotchPayVerifier(notchPayClient)
	if err != nil {
		logg.Error(ctx, "failed to create notchpay verifier", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	dispatcher, err := notifications.NewDispatcher(pubsubClient.NotificationPublisher(), logg)
	if err != nil {
		logg.Error(ctx, "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		authz.NewRoleAuthorizer(),
		logg,
		webhookMetrics,
		dispatcher,
	)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	guard, err := webhooks.NewGuard(redisClient, cfg.Webhook.IdempotencyTTL)
	if err != nil {
		logg.Error(ctx, "failed to create idempotency guard", err)
		os.Exit(1)
	}

	webhookService, err := webhooks.NewService(webhooks.ServiceParams{
		Orders:   ordersService,
		Guard:    guard,
		Logger:   logg,
		Metrics:  webhookMetrics,
		Notifier: dispatcher,
		NotchPay: notchPayClient,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}

	refundService, err := refunds.NewService(refunds.ServiceParams{
		Repo:     orders.NewRepository(dbClient.DB()),
		Orders:   ordersService,
		Authz:    authz.NewRoleAuthorizer(),
		Stripe:   refunds.NewStripeClient(stripeClient),
		Logger:   logg,
		Metrics:  webhookMetrics,
		Notifier: dispatcher,
	})
	if err != nil {
		logg.Error(ctx, "failed to create refund service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Orders:           ordersService,
			Refunds:          refundService,
			Webhooks:         webhookService,
			StripeVerifier:   stripeVerifier,
			NotchPayVerifier: notchPayVerifier,
			Gatherer:         registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "server shutdown failed", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
