package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

// ServiceParams wires the webhook pipeline. Publisher and Metrics are optional.
type ServiceParams struct {
	Provider    PaymentsProvider
	Users       UserFinder
	Catalog     CatalogReader
	Purchases   PurchaseStore
	Consumption ConsumptionStore
	Publisher   PurchasePublisher
	Logger      *logger.Logger
	Metrics     *metrics.WebhookMetrics
	Now         func() time.Time
}

// Service processes verified Stripe events.
type Service struct {
	dispatcher *Dispatcher
	logg       *logger.Logger
	metrics    *metrics.WebhookMetrics
	now        func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Provider == nil {
		return nil, errors.New("payments provider is required")
	}
	if params.Purchases == nil {
		return nil, errors.New("purchase store is required")
	}
	if params.Consumption == nil {
		return nil, errors.New("consumption store is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}

	matcher := NewMatcher(params.Provider, params.Logger)
	entitlement := NewEntitlementUpserter(params.Consumption, now)
	materializer := NewMaterializer(params.Users, params.Purchases, entitlement, params.Publisher, params.Logger, now)
	checkout := NewCheckoutHandler(params.Provider, params.Catalog, matcher, materializer, params.Logger, params.Metrics)
	reconciler := NewReconciler(params.Purchases, params.Logger, now)

	return &Service{
		dispatcher: NewDispatcher(checkout, reconciler, params.Logger),
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        now,
	}, nil
}

// HandleEvent decodes and dispatches a verified event. A nil error means the
// delivery is settled; any error asks the provider to redeliver.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil {
		return fmt.Errorf("%w: nil event", ErrMalformedEvent)
	}
	start := s.now()
	eventType := string(event.Type)
	ctx = s.logg.WithEvent(ctx, event.ID, eventType)

	decoded, err := DecodeEvent(*event)
	if err != nil {
		s.metrics.IncEvent(eventType, metrics.OutcomeFailed)
		s.logg.Error(ctx, "decode webhook event", err)
		return err
	}

	outcome, err := s.dispatcher.Dispatch(ctx, decoded)
	s.metrics.IncEvent(eventType, outcome)
	s.metrics.ObserveDuration(eventType, s.now().Sub(start))
	if err != nil {
		s.logg.Error(ctx, "webhook event handling failed", err)
		return err
	}
	return nil
}
