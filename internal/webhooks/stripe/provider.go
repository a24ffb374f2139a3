package stripewebhook

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"
)

// PaymentsProvider is the slice of the payment provider API the pipeline reads.
type PaymentsProvider interface {
	// GetSession retrieves a checkout session; expand requests the line items
	// together with their products.
	GetSession(ctx context.Context, id string, expand bool) (*stripe.CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
}

// StripeProvider calls the Stripe API through an injected client.
type StripeProvider struct {
	api *stripe.Client
}

func NewStripeProvider(api *stripe.Client) *StripeProvider {
	return &StripeProvider{api: api}
}

func (p *StripeProvider) GetSession(ctx context.Context, id string, expand bool) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionRetrieveParams{}
	if expand {
		params.AddExpand("line_items")
		params.AddExpand("line_items.data.price.product")
	}
	session, err := p.api.V1CheckoutSessions.Retrieve(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", id, err)
	}
	return session, nil
}

func (p *StripeProvider) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.AddExpand("data.price.product")

	var items []*stripe.LineItem
	for item, err := range p.api.V1CheckoutSessions.ListLineItems(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("list line items for %s: %w", sessionID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *StripeProvider) GetProduct(ctx context.Context, id string) (*stripe.Product, error) {
	product, err := p.api.V1Products.Retrieve(ctx, id, &stripe.ProductRetrieveParams{})
	if err != nil {
		return nil, fmt.Errorf("retrieve product %s: %w", id, err)
	}
	return product, nil
}

func (p *StripeProvider) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	customer, err := p.api.V1Customers.Retrieve(ctx, id, &stripe.CustomerRetrieveParams{})
	if err != nil {
		return nil, fmt.Errorf("retrieve customer %s: %w", id, err)
	}
	return customer, nil
}

// DisabledProvider is injected when no API key is configured.
type DisabledProvider struct{}

func (DisabledProvider) GetSession(context.Context, string, bool) (*stripe.CheckoutSession, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) ListLineItems(context.Context, string) ([]*stripe.LineItem, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) GetProduct(context.Context, string) (*stripe.Product, error) {
	return nil, ErrPaymentsDisabled
}

func (DisabledProvider) GetCustomer(context.Context, string) (*stripe.Customer, error) {
	return nil, ErrPaymentsDisabled
}
