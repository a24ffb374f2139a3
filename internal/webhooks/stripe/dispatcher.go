package stripewebhook

import (
	"context"
	"fmt"

	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
)

// Dispatcher routes decoded events to their handler.
type Dispatcher struct {
	checkout   *CheckoutHandler
	reconciler *Reconciler
	logg       *logger.Logger
}

func NewDispatcher(checkout *CheckoutHandler, reconciler *Reconciler, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{checkout: checkout, reconciler: reconciler, logg: logg}
}

// Dispatch runs the handler for event and returns the outcome label. Unknown
// event types are ignored. A panicking handler is reported as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, event InboundEvent) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome = metrics.OutcomeFailed
			err = fmt.Errorf("panic handling %s: %v", event.EventType(), r)
			if d.logg != nil {
				d.logg.Error(ctx, "webhook handler panicked", err)
			}
		}
	}()

	switch ev := event.(type) {
	case CheckoutCompleted:
		if _, err := d.checkout.Handle(ctx, ev.Session); err != nil {
			return metrics.OutcomeFailed, err
		}
		return metrics.OutcomeProcessed, nil

	case PaymentIntentSucceeded:
		if _, err := d.reconciler.Reconcile(ctx, ev.PaymentIntent.ID); err != nil {
			return metrics.OutcomeFailed, err
		}
		return metrics.OutcomeProcessed, nil

	case SubscriptionChanged:
		if d.logg != nil {
			d.logg.Info(d.logg.WithField(ctx, "subscription_id", ev.Subscription.ID), "subscription event received, no action taken")
		}
		return metrics.OutcomeIgnored, nil

	default:
		if d.logg != nil {
			d.logg.Info(ctx, "unhandled event type ignored")
		}
		return metrics.OutcomeIgnored, nil
	}
}
