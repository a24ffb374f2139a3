package stripewebhook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/logger"
)

// Reconciler settles pending purchases once their payment intent succeeds.
type Reconciler struct {
	purchases PurchaseStore
	logg      *logger.Logger
	now       func() time.Time
}

func NewReconciler(purchases PurchaseStore, logg *logger.Logger, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{purchases: purchases, logg: logg, now: now}
}

// Reconcile marks every purchase recorded for paymentIntentID as paid. No
// matching purchase is a normal outcome.
func (r *Reconciler) Reconcile(ctx context.Context, paymentIntentID string) (int, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		if r.logg != nil {
			r.logg.Warn(ctx, "payment intent event without id")
		}
		return 0, nil
	}

	updated, err := r.purchases.MarkPaidByPaymentIntent(ctx, paymentIntentID, r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("mark purchases paid for %s: %w", paymentIntentID, err)
	}

	if r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"payment_intent_id": paymentIntentID,
			"purchases_updated": updated,
		})
		if updated == 0 {
			r.logg.Info(ctx, "no purchases recorded for payment intent")
		} else {
			r.logg.Info(ctx, "purchases marked paid")
		}
	}
	return updated, nil
}
