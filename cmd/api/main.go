package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/studio-backend/api/controllers"
	"github.com/angelmondragon/studio-backend/api/routes"
	stripewebhook "github.com/angelmondragon/studio-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/studio-backend/pkg/config"
	"github.com/angelmondragon/studio-backend/pkg/instance"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
	"github.com/angelmondragon/studio-backend/pkg/pubsub"
	"github.com/angelmondragon/studio-backend/pkg/redis"
	"github.com/angelmondragon/studio-backend/pkg/stripe"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

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

	backend, err := openBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap datastore", err)
		os.Exit(1)
	}
	defer backend.close(ctx, logg)

	readiness := []controllers.ReadinessCheck{{Name: backend.name, Pinger: backend.pinger}}

	var guard *stripewebhook.IdempotencyGuard
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		guard, err = stripewebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.EventTTL, cfg.Webhook.Scope)
		if err != nil {
			logg.Error(ctx, "failed to create webhook idempotency guard", err)
			os.Exit(1)
		}
		readiness = append(readiness, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	} else {
		logg.Warn(ctx, "redis not configured, webhook deliveries rely on store dedup only")
	}

	var publisher stripewebhook.PurchasePublisher
	if cfg.PubSub.PurchasesTopic != "" {
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
		publisher = pubsub.NewPurchasePublisher(pubsubClient.PurchasesPublisher())
		readiness = append(readiness, controllers.ReadinessCheck{Name: "pubsub", Pinger: pubsubClient})
	}

	var provider stripewebhook.PaymentsProvider = stripewebhook.DisabledProvider{}
	if cfg.Stripe.PaymentsEnabled() {
		stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap stripe", err)
			os.Exit(1)
		}
		provider = stripewebhook.NewStripeProvider(stripeClient.API())
	} else {
		logg.Warn(ctx, "stripe api key not configured, payments disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Provider:    provider,
		Users:       backend.users,
		Catalog:     backend.catalog,
		Purchases:   backend.purchases,
		Consumption: backend.consumption,
		Publisher:   publisher,
		Logger:      logg,
		Metrics:     webhookMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		Gatherer:        registry,
		WebhookService:  webhookService,
		WebhookVerifier: stripewebhook.NewVerifier(cfg.Stripe.Secret, cfg.Webhook.SignatureTolerance, cfg.Stripe.PaymentsEnabled()),
		WebhookGuard:    guard,
		WebhookMetrics:  webhookMetrics,
		Purchases:       backend.purchaseLister,
		Consumption:     backend.consumptionLister,
		Readiness:       readiness,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.GetID(),
		"datastore": backend.name,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "api server shutdown failed", err)
		}
	}
}
