package stripewebhook

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/studio-backend/pkg/db/types"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

const (
	unknownValue        = "unknown"
	unknownProductName  = "Unknown Product"
	catalogServiceType  = "service"
	metadataServiceType = "service_type"
	metadataCategory    = "category"
)

// CatalogReader lists the service catalog in display order.
type CatalogReader interface {
	ListServices(ctx context.Context) ([]models.Service, error)
}

// ResolvedService is the catalog identity a line item was matched to.
// ServiceID is nil when no catalog offering sells the item's price.
type ResolvedService struct {
	ServiceID   *string
	ServiceName string
	Category    string
	ServiceType string
}

type catalogHit struct {
	service  models.Service
	offering dbtypes.Offering
}

// CatalogIndex maps a price ID to the first offering selling it, scanning
// services in catalog order and each service's left section before its right.
type CatalogIndex struct {
	byPrice map[string]catalogHit
}

func NewCatalogIndex(services []models.Service) CatalogIndex {
	idx := CatalogIndex{byPrice: make(map[string]catalogHit)}
	for _, svc := range services {
		for _, offering := range svc.Offerings() {
			price := strings.TrimSpace(offering.Price)
			if price == "" {
				continue
			}
			if _, taken := idx.byPrice[price]; taken {
				continue
			}
			idx.byPrice[price] = catalogHit{service: svc, offering: offering}
		}
	}
	return idx
}

func (c CatalogIndex) lookup(priceID string) (catalogHit, bool) {
	if c.byPrice == nil || priceID == "" {
		return catalogHit{}, false
	}
	hit, ok := c.byPrice[priceID]
	return hit, ok
}

// Len returns the number of indexed price IDs.
func (c CatalogIndex) Len() int {
	return len(c.byPrice)
}

// Matcher resolves a purchased line item to a catalog service.
type Matcher struct {
	provider PaymentsProvider
	logg     *logger.Logger
}

func NewMatcher(provider PaymentsProvider, logg *logger.Logger) *Matcher {
	return &Matcher{provider: provider, logg: logg}
}

// Resolve returns the matched service and the product the item refers to.
// A product that cannot be fetched degrades to a placeholder.
func (m *Matcher) Resolve(ctx context.Context, item *stripe.LineItem, catalog CatalogIndex) (ResolvedService, *stripe.Product, error) {
	if item == nil {
		return ResolvedService{}, nil, errors.New("line item is nil")
	}

	product := m.product(ctx, item)
	resolved := ResolvedService{
		ServiceName: product.Name,
		Category:    metadataOr(product.Metadata, metadataCategory),
		ServiceType: metadataOr(product.Metadata, metadataServiceType),
	}

	if item.Price == nil || item.Price.ID == "" {
		return resolved, product, nil
	}

	hit, ok := catalog.lookup(item.Price.ID)
	if !ok {
		return resolved, product, nil
	}

	serviceID := hit.service.ID
	resolved.ServiceID = &serviceID
	resolved.ServiceName = hit.offering.Title
	if strings.TrimSpace(resolved.ServiceName) == "" {
		resolved.ServiceName = product.Name
	}
	resolved.Category = hit.service.Category
	resolved.ServiceType = catalogServiceType
	return resolved, product, nil
}

func (m *Matcher) product(ctx context.Context, item *stripe.LineItem) *stripe.Product {
	if item.Price == nil || item.Price.Product == nil {
		return placeholderProduct("")
	}
	product := item.Price.Product
	if product.Object != "" {
		return product
	}

	// Only the ID was sent; the product was not expanded.
	fetched, err := m.provider.GetProduct(ctx, product.ID)
	if err != nil || fetched == nil {
		if m.logg != nil {
			ctx = m.logg.WithField(ctx, "product_id", product.ID)
			m.logg.WarnErr(ctx, "product fetch failed, using placeholder", err)
		}
		return placeholderProduct(product.ID)
	}
	return fetched
}

func placeholderProduct(id string) *stripe.Product {
	return &stripe.Product{
		ID:       id,
		Name:     unknownProductName,
		Metadata: map[string]string{},
	}
}

func metadataOr(metadata map[string]string, key string) string {
	if v := strings.TrimSpace(metadata[key]); v != "" {
		return v
	}
	return unknownValue
}
