package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/angelmondragon/studio-backend/api/middleware"
	"github.com/angelmondragon/studio-backend/api/responses"
	stripewebhook "github.com/angelmondragon/studio-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

const signatureHeader = "Stripe-Signature"

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type signatureVerifier interface {
	Verify(payload []byte, header string) (stripe.Event, error)
	SecretPrefix() string
}

// StripeWebhookDeps wires the webhook endpoint. Guard and Metrics are optional.
type StripeWebhookDeps struct {
	Service  StripeWebhookService
	Verifier signatureVerifier
	Guard    stripeWebhookGuard
	Metrics  *metrics.WebhookMetrics
	Logger   *logger.Logger
}

// StripeWebhook verifies and processes Stripe event deliveries. Verification
// failures answer 400, processing failures 500 so Stripe redelivers, and
// everything else an empty 200.
func StripeWebhook(deps StripeWebhookDeps) http.HandlerFunc {
	logg := deps.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			responses.WriteEmpty(w, http.StatusNoContent)
			return
		}
		ctx := r.Context()

		if deps.Service == nil || deps.Verifier == nil {
			responses.WriteText(w, http.StatusInternalServerError, "Webhook Error: handler not initialized")
			return
		}

		payload, source, err := stripewebhook.ExtractRawBody(inboundBody(r))
		if err != nil {
			if logg != nil {
				logg.WarnErr(ctx, "stripe webhook body unavailable", err)
			}
			reject(deps, w, err)
			return
		}
		if source.Degraded() && logg != nil {
			logg.Warn(logg.WithField(ctx, "body_source", string(source)), "verifying re-encoded body, signature will likely fail")
		}

		header := r.Header.Get(signatureHeader)
		event, err := deps.Verifier.Verify(payload, header)
		if err != nil {
			if logg != nil {
				logg.WarnErr(logg.WithFields(ctx, map[string]any{
					"body_source":      string(source),
					"body_bytes":       len(payload),
					"signature_prefix": stripewebhook.Redact(header),
					"secret_prefix":    deps.Verifier.SecretPrefix(),
				}), "stripe signature rejected", err)
			}
			reject(deps, w, err)
			return
		}
		if logg != nil {
			ctx = logg.WithEvent(ctx, event.ID, string(event.Type))
		}

		if deps.Guard != nil {
			seen, err := deps.Guard.CheckAndMark(ctx, event.ID)
			if err != nil {
				if logg != nil {
					logg.Error(ctx, "check webhook idempotency", err)
				}
				responses.WriteText(w, http.StatusInternalServerError, "Webhook Error: idempotency check failed")
				return
			}
			if seen {
				deps.Metrics.IncEvent(string(event.Type), metrics.OutcomeDuplicate)
				if logg != nil {
					logg.Info(ctx, "stripe event already processed")
				}
				responses.WriteEmpty(w, http.StatusOK)
				return
			}
		}

		if err := deps.Service.HandleEvent(ctx, &event); err != nil {
			if deps.Guard != nil {
				if delErr := deps.Guard.Delete(ctx, event.ID); delErr != nil && logg != nil {
					logg.WarnErr(ctx, "release webhook idempotency key", delErr)
				}
			}
			responses.WriteText(w, http.StatusInternalServerError, "Webhook Error: "+err.Error())
			return
		}

		responses.WriteEmpty(w, http.StatusOK)
	}
}

func reject(deps StripeWebhookDeps, w http.ResponseWriter, err error) {
	deps.Metrics.IncEvent("unverified", metrics.OutcomeRejected)
	msg := err.Error()
	if errors.Is(err, stripewebhook.ErrSignatureInvalid) {
		// The library reason stays in the logs.
		msg = stripewebhook.ErrSignatureInvalid.Error()
	}
	responses.WriteText(w, http.StatusBadRequest, "Webhook Error: "+msg)
}

// inboundBody prefers the bytes preserved by CaptureRawBody and falls back to
// reading the body directly when the route is mounted without it.
func inboundBody(r *http.Request) stripewebhook.InboundBody {
	if raw, ok := middleware.RawBodyFromContext(r.Context()); ok {
		return stripewebhook.InboundBody{RawBuffer: raw}
	}
	if r.Body == nil || r.Body == http.NoBody {
		return stripewebhook.InboundBody{}
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil || len(raw) == 0 {
		return stripewebhook.InboundBody{}
	}
	return stripewebhook.InboundBody{Body: raw}
}
