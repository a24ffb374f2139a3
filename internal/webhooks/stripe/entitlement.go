package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// ConsumptionStore persists service consumption records. The store enforces
// one record per (user, category, product).
type ConsumptionStore interface {
	// FindByKey returns pkgerrors.ErrNotFound when no record matches.
	FindByKey(ctx context.Context, userID, category, productID string) (*models.ServiceConsumption, error)
	// Create returns pkgerrors.ErrDuplicate when the key is already taken.
	Create(ctx context.Context, consumption *models.ServiceConsumption) error
	Update(ctx context.Context, consumption *models.ServiceConsumption) error
}

// EntitlementUpserter merges purchases into the buyer's service consumption.
type EntitlementUpserter struct {
	store ConsumptionStore
	now   func() time.Time
}

func NewEntitlementUpserter(store ConsumptionStore, now func() time.Time) *EntitlementUpserter {
	if now == nil {
		now = time.Now
	}
	return &EntitlementUpserter{store: store, now: now}
}

// Upsert refreshes the existing record for the purchase's key or creates one.
// It runs again for redelivered purchases and converges on the same record.
func (u *EntitlementUpserter) Upsert(ctx context.Context, userID string, purchase models.Purchase) (*models.ServiceConsumption, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	existing, err := u.store.FindByKey(ctx, userID, purchase.ServiceCategory, purchase.StripeProductID)
	switch {
	case err == nil:
		return u.refresh(ctx, existing, purchase)
	case !errors.Is(err, pkgerrors.ErrNotFound):
		return nil, fmt.Errorf("find service consumption: %w", err)
	}

	now := u.now().UTC()
	created := &models.ServiceConsumption{
		UserID:          userID,
		ServiceCategory: purchase.ServiceCategory,
		StripeProductID: purchase.StripeProductID,
		ServiceID:       purchase.ServiceID,
		ServiceName:     purchase.ServiceName,
		ServiceType:     purchase.ServiceType,
		PurchaseID:      purchase.StripeSessionID,
		TotalAmount:     purchase.TotalAmount,
		Currency:        purchase.Currency,
		Status:          enums.ConsumptionStatusPurchased,
		StartDate:       now,
		Notes:           purchaseNote(purchase),
	}
	if err := u.store.Create(ctx, created); err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicate) {
			return nil, fmt.Errorf("create service consumption: %w", err)
		}
		// A concurrent delivery inserted the same key first.
		existing, err = u.store.FindByKey(ctx, userID, purchase.ServiceCategory, purchase.StripeProductID)
		if err != nil {
			return nil, fmt.Errorf("reload service consumption: %w", err)
		}
		return u.refresh(ctx, existing, purchase)
	}
	return created, nil
}

func (u *EntitlementUpserter) refresh(ctx context.Context, existing *models.ServiceConsumption, purchase models.Purchase) (*models.ServiceConsumption, error) {
	existing.Status = enums.ConsumptionStatusPurchased
	existing.PurchaseID = purchase.ID
	existing.TotalAmount = purchase.TotalAmount
	existing.Currency = purchase.Currency
	existing.ServiceName = purchase.ServiceName
	existing.ServiceType = purchase.ServiceType
	if purchase.ServiceID != nil {
		existing.ServiceID = purchase.ServiceID
	}
	existing.Notes = repurchaseNote(purchase)
	existing.UpdatedAt = u.now().UTC()
	if err := u.store.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update service consumption: %w", err)
	}
	return existing, nil
}

func purchaseNote(p models.Purchase) string {
	return fmt.Sprintf("Purchased %s (x%d) for %s via checkout %s", p.ServiceName, p.Quantity, FormatAmount(p.TotalAmount, p.Currency), p.StripeSessionID)
}

func repurchaseNote(p models.Purchase) string {
	return fmt.Sprintf("Purchase %s: %s (x%d) for %s", p.ID, p.ServiceName, p.Quantity, FormatAmount(p.TotalAmount, p.Currency))
}

// zeroDecimalCurrencies are charged in whole units by the provider.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// FormatAmount renders a minor-unit amount such as "100.00 USD".
func FormatAmount(minor int64, currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	exp := int32(-2)
	places := int32(2)
	if zeroDecimalCurrencies[currency] {
		exp, places = 0, 0
	}
	amount := decimal.New(minor, exp).StringFixed(places)
	if currency == "" {
		return amount
	}
	return amount + " " + strings.ToUpper(currency)
}
