package stripewebhook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/enums"
)

func samplePurchase() models.Purchase {
	return models.Purchase{
		ID:              "pur_1",
		StripeSessionID: "cs_test_1",
		StripeProductID: "prod_xyz",
		ServiceCategory: "Design",
		ServiceName:     "Logo Design",
		ServiceType:     "service",
		Quantity:        2,
		UnitPrice:       5000,
		TotalAmount:     10000,
		Currency:        "usd",
	}
}

func TestEntitlementCreatesRecord(t *testing.T) {
	store := &memConsumption{}
	got, err := NewEntitlementUpserter(store, clock).Upsert(context.Background(), "user_1", samplePurchase())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if store.creates != 1 || store.updates != 0 {
		t.Fatalf("expected one create, got creates=%d updates=%d", store.creates, store.updates)
	}
	if got.Status != enums.ConsumptionStatusPurchased || !got.StartDate.Equal(fixedNow) {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.PurchaseID != "cs_test_1" {
		t.Fatalf("expected session id as purchase reference, got %s", got.PurchaseID)
	}
	if !strings.Contains(got.Notes, "100.00 USD") || !strings.Contains(got.Notes, "cs_test_1") {
		t.Fatalf("unexpected note %q", got.Notes)
	}
}

func TestEntitlementRefreshesExistingRecord(t *testing.T) {
	start := fixedNow.Add(-30 * 24 * time.Hour)
	store := &memConsumption{rows: []*models.ServiceConsumption{{
		ID:              "sc_1",
		UserID:          "user_1",
		ServiceCategory: "Design",
		StripeProductID: "prod_xyz",
		Status:          enums.ConsumptionStatusCompleted,
		PurchaseID:      "old",
		TotalAmount:     1,
		StartDate:       start,
		Notes:           "old note",
	}}}

	got, err := NewEntitlementUpserter(store, clock).Upsert(context.Background(), "user_1", samplePurchase())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if store.creates != 0 || store.updates != 1 || len(store.rows) != 1 {
		t.Fatalf("expected in-place update, got creates=%d updates=%d rows=%d", store.creates, store.updates, len(store.rows))
	}
	if got.Status != enums.ConsumptionStatusPurchased || got.PurchaseID != "pur_1" || got.TotalAmount != 10000 {
		t.Fatalf("unexpected refresh %+v", got)
	}
	if strings.Contains(got.Notes, "old note") || !strings.Contains(got.Notes, "pur_1") {
		t.Fatalf("expected note overwritten, got %q", got.Notes)
	}
	if !got.StartDate.Equal(start) {
		t.Fatalf("expected start date kept")
	}
}

func TestEntitlementKeyIncludesCategoryAndProduct(t *testing.T) {
	store := &memConsumption{}
	u := NewEntitlementUpserter(store, clock)
	p := samplePurchase()
	if _, err := u.Upsert(context.Background(), "user_1", p); err != nil {
		t.Fatalf("first: %v", err)
	}
	p.StripeProductID = "prod_other"
	if _, err := u.Upsert(context.Background(), "user_1", p); err != nil {
		t.Fatalf("second: %v", err)
	}
	if len(store.rows) != 2 {
		t.Fatalf("expected separate records per product, got %d", len(store.rows))
	}
}

func TestEntitlementLostRaceUpdatesWinner(t *testing.T) {
	store := &memConsumption{}
	store.beforeCreate = func(m *memConsumption) {
		m.rows = append(m.rows, &models.ServiceConsumption{
			ID:              "sc_winner",
			UserID:          "user_1",
			ServiceCategory: "Design",
			StripeProductID: "prod_xyz",
		})
	}

	got, err := NewEntitlementUpserter(store, clock).Upsert(context.Background(), "user_1", samplePurchase())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.ID != "sc_winner" || len(store.rows) != 1 || store.updates != 1 {
		t.Fatalf("expected the concurrent record to be refreshed, got %+v rows=%d", got, len(store.rows))
	}
}

func TestEntitlementStoreErrors(t *testing.T) {
	if _, err := NewEntitlementUpserter(&memConsumption{findErr: errBoom}, clock).Upsert(context.Background(), "user_1", samplePurchase()); !errors.Is(err, errBoom) {
		t.Fatalf("expected find error, got %v", err)
	}
	if _, err := NewEntitlementUpserter(&memConsumption{createErr: errBoom}, clock).Upsert(context.Background(), "user_1", samplePurchase()); !errors.Is(err, errBoom) {
		t.Fatalf("expected create error, got %v", err)
	}
	if _, err := NewEntitlementUpserter(&memConsumption{}, clock).Upsert(context.Background(), "", samplePurchase()); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]struct {
		minor    int64
		currency string
	}{
		"100.00 USD": {10000, "usd"},
		"0.05 EUR":   {5, "EUR"},
		"5000 JPY":   {5000, "jpy"},
		"12.34":      {1234, ""},
	}
	for want, tc := range cases {
		if got := FormatAmount(tc.minor, tc.currency); got != want {
			t.Fatalf("FormatAmount(%d, %q) = %q, want %q", tc.minor, tc.currency, got, want)
		}
	}
}
