package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/angelmondragon/studio-backend/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"
)

// CheckoutSummary counts line item outcomes for one session.
type CheckoutSummary struct {
	SessionID  string
	LineItems  int
	Recorded   int
	Duplicates int
	Failed     int
}

// CheckoutHandler turns a completed checkout session into purchase records.
type CheckoutHandler struct {
	provider     PaymentsProvider
	catalog      CatalogReader
	matcher      *Matcher
	materializer *Materializer
	logg         *logger.Logger
	metrics      *metrics.WebhookMetrics
}

func NewCheckoutHandler(provider PaymentsProvider, catalog CatalogReader, matcher *Matcher, materializer *Materializer, logg *logger.Logger, m *metrics.WebhookMetrics) *CheckoutHandler {
	return &CheckoutHandler{
		provider:     provider,
		catalog:      catalog,
		matcher:      matcher,
		materializer: materializer,
		logg:         logg,
		metrics:      m,
	}
}

// Handle processes every line item of the session in order. Item failures are
// logged and skipped, except failures to persist a purchase, which are
// returned after the remaining items have been attempted.
func (h *CheckoutHandler) Handle(ctx context.Context, payload stripe.CheckoutSession) (CheckoutSummary, error) {
	if strings.TrimSpace(payload.ID) == "" {
		return CheckoutSummary{}, fmt.Errorf("%w: checkout session without id", ErrMalformedEvent)
	}
	ctx = h.withField(ctx, "session_id", payload.ID)

	session, err := h.fetchSession(ctx, payload.ID)
	if err != nil {
		return CheckoutSummary{SessionID: payload.ID}, err
	}

	sc := h.sessionContext(ctx, session)
	items, err := h.lineItems(ctx, session)
	if err != nil {
		return CheckoutSummary{SessionID: session.ID}, err
	}
	catalog := h.loadCatalog(ctx)

	summary := CheckoutSummary{SessionID: session.ID, LineItems: len(items)}
	var itemErrs, persistErrs error
	for i, item := range items {
		itemCtx := h.withField(ctx, "item_index", i)

		result, err := h.processItem(itemCtx, sc, i, item, catalog)
		if err != nil {
			summary.Failed++
			h.metrics.IncLineItem(metrics.OutcomeFailed)
			itemErrs = multierr.Append(itemErrs, fmt.Errorf("line item %d: %w", i, err))
			var persistErr *PersistError
			if errors.As(err, &persistErr) {
				persistErrs = multierr.Append(persistErrs, err)
			}
			if h.logg != nil {
				h.logg.Error(itemCtx, "line item processing failed", err)
			}
			continue
		}

		if result.Duplicate {
			summary.Duplicates++
			h.metrics.IncLineItem(metrics.OutcomeDuplicate)
		} else {
			summary.Recorded++
			h.metrics.IncLineItem(metrics.OutcomeProcessed)
		}
	}

	if h.logg != nil {
		ctx = h.logg.WithFields(ctx, map[string]any{
			"line_items": summary.LineItems,
			"recorded":   summary.Recorded,
			"duplicates": summary.Duplicates,
			"failed":     summary.Failed,
		})
		if itemErrs != nil {
			h.logg.WarnErr(ctx, "checkout session processed with line item failures", itemErrs)
		} else {
			h.logg.Info(ctx, "checkout session processed")
		}
	}

	if persistErrs != nil {
		return summary, fmt.Errorf("record purchases for %s: %w", session.ID, persistErrs)
	}
	return summary, nil
}

func (h *CheckoutHandler) processItem(ctx context.Context, sc SessionContext, index int, item *stripe.LineItem, catalog CatalogIndex) (res MaterializeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing line item: %v", r)
		}
	}()

	resolved, product, err := h.matcher.Resolve(ctx, item, catalog)
	if err != nil {
		return MaterializeResult{}, fmt.Errorf("match service: %w", err)
	}
	return h.materializer.Materialize(ctx, sc, index, item, product, resolved)
}

func (h *CheckoutHandler) fetchSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	session, err := h.provider.GetSession(ctx, id, true)
	if err == nil && session != nil {
		return session, nil
	}
	if h.logg != nil {
		h.logg.WarnErr(ctx, "expanded session fetch failed, retrying without expansion", err)
	}

	session, bareErr := h.provider.GetSession(ctx, id, false)
	if bareErr != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", id, multierr.Combine(err, bareErr))
	}
	if session == nil {
		return nil, fmt.Errorf("retrieve checkout session %s: empty response", id)
	}
	return session, nil
}

func (h *CheckoutHandler) sessionContext(ctx context.Context, session *stripe.CheckoutSession) SessionContext {
	sc := SessionContext{
		SessionID:     session.ID,
		PaymentStatus: string(session.PaymentStatus),
		Currency:      string(session.Currency),
		CustomerEmail: session.CustomerEmail,
	}
	if session.CustomerDetails != nil {
		if session.CustomerDetails.Email != "" {
			sc.CustomerEmail = session.CustomerDetails.Email
		}
		sc.CustomerName = session.CustomerDetails.Name
	}
	if session.PaymentIntent != nil {
		sc.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.Customer == nil || session.Customer.ID == "" {
		return sc
	}

	sc.CustomerID = session.Customer.ID
	customer, err := h.provider.GetCustomer(ctx, sc.CustomerID)
	if err != nil || customer == nil {
		if h.logg != nil {
			h.logg.WarnErr(h.withField(ctx, "customer_id", sc.CustomerID), "customer fetch failed, keeping session email", err)
		}
		return sc
	}
	if customer.Email != "" {
		sc.CustomerEmail = customer.Email
	}
	if sc.CustomerName == "" {
		sc.CustomerName = customer.Name
	}
	return sc
}

func (h *CheckoutHandler) lineItems(ctx context.Context, session *stripe.CheckoutSession) ([]*stripe.LineItem, error) {
	if session.LineItems != nil && !session.LineItems.HasMore {
		return session.LineItems.Data, nil
	}
	items, err := h.provider.ListLineItems(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	return items, nil
}

func (h *CheckoutHandler) loadCatalog(ctx context.Context) CatalogIndex {
	if h.catalog == nil {
		return CatalogIndex{}
	}
	services, err := h.catalog.ListServices(ctx)
	if err != nil {
		if h.logg != nil {
			h.logg.WarnErr(ctx, "service catalog unavailable, matching on product metadata", err)
		}
		return CatalogIndex{}
	}
	return NewCatalogIndex(services)
}

func (h *CheckoutHandler) withField(ctx context.Context, key string, value any) context.Context {
	if h.logg == nil {
		return ctx
	}
	return h.logg.WithField(ctx, key, value)
}
