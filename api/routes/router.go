package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/studio-backend/api/controllers"
	webhookcontrollers "github.com/angelmondragon/studio-backend/api/controllers/webhooks"
	"github.com/angelmondragon/studio-backend/api/middleware"
	stripewebhook "github.com/angelmondragon/studio-backend/internal/webhooks/stripe"
	pkgAuth "github.com/angelmondragon/studio-backend/pkg/auth"
	"github.com/angelmondragon/studio-backend/pkg/config"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
)

// Deps carries everything the router mounts. Nil listers or a disabled JWT
// config leave the admin routes unmounted.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer

	WebhookService  webhookcontrollers.StripeWebhookService
	WebhookVerifier *stripewebhook.Verifier
	WebhookGuard    *stripewebhook.IdempotencyGuard
	WebhookMetrics  *metrics.WebhookMetrics

	Purchases   controllers.PurchaseLister
	Consumption controllers.ConsumptionLister

	Readiness []controllers.ReadinessCheck
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Readiness...))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	webhook := webhookcontrollers.StripeWebhook(webhookcontrollers.StripeWebhookDeps{
		Service:  deps.WebhookService,
		Verifier: deps.WebhookVerifier,
		Guard:    deps.WebhookGuard,
		Metrics:  deps.WebhookMetrics,
		Logger:   logg,
	})
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(middleware.CaptureRawBody(cfg.Webhook.MaxBodyBytes, logg))
		r.Post("/stripe", webhook)
		r.Options("/stripe", webhook)
	})

	if cfg.JWT.Enabled() && deps.Purchases != nil && deps.Consumption != nil {
		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(pkgAuth.RoleAdmin, logg))
			r.Get("/purchases", controllers.AdminPurchases(deps.Purchases, logg))
			r.Get("/service-consumption", controllers.AdminServiceConsumption(deps.Consumption, logg))
		})
	}

	return r
}
