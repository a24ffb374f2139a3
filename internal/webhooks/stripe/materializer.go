package stripewebhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"github.com/angelmondragon/studio-backend/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

// UserFinder resolves internal users by exact email.
type UserFinder interface {
	// FindByEmail returns pkgerrors.ErrNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// PurchaseStore persists purchase records.
type PurchaseStore interface {
	// Create returns pkgerrors.ErrDuplicate when the dedup key already exists.
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByDedupKey(ctx context.Context, key string) (*models.Purchase, error)
	// MarkPaidByDedupKey settles one pending purchase and reports whether a
	// record changed.
	MarkPaidByDedupKey(ctx context.Context, key string, paidAt time.Time) (bool, error)
	// MarkPaidByPaymentIntent flips every purchase for the intent to paid and
	// returns how many records matched.
	MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string, paidAt time.Time) (int, error)
}

// PurchasePublisher announces newly recorded purchases.
type PurchasePublisher interface {
	PurchaseRecorded(ctx context.Context, purchase models.Purchase) error
}

// SessionContext is the session-level data shared by every line item.
type SessionContext struct {
	SessionID       string
	CustomerID      string
	CustomerEmail   string
	CustomerName    string
	PaymentStatus   string
	Currency        string
	PaymentIntentID string
}

// PersistError marks a failure to record a purchase. It is the one line item
// failure that fails the delivery so the provider redelivers it.
type PersistError struct {
	Index int
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist purchase for line item %d: %v", e.Index, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// DedupKey identifies one line item of one checkout session.
func DedupKey(sessionID string, index int) string {
	sum := sha256.Sum256([]byte(sessionID + ":" + strconv.Itoa(index)))
	return hex.EncodeToString(sum[:])
}

// MaterializeResult reports what happened to one line item.
type MaterializeResult struct {
	Purchase    *models.Purchase
	Duplicate   bool
	Consumption *models.ServiceConsumption
}

// Materializer records one purchase per line item and grants entitlements.
type Materializer struct {
	users       UserFinder
	purchases   PurchaseStore
	entitlement *EntitlementUpserter
	publisher   PurchasePublisher
	logg        *logger.Logger
	now         func() time.Time
}

func NewMaterializer(users UserFinder, purchases PurchaseStore, entitlement *EntitlementUpserter, publisher PurchasePublisher, logg *logger.Logger, now func() time.Time) *Materializer {
	if now == nil {
		now = time.Now
	}
	return &Materializer{
		users:       users,
		purchases:   purchases,
		entitlement: entitlement,
		publisher:   publisher,
		logg:        logg,
		now:         now,
	}
}

// Materialize inserts the purchase for item and, when the buyer is a known
// user, upserts their service consumption. A redelivered item resolves to the
// purchase already stored under its dedup key.
func (m *Materializer) Materialize(ctx context.Context, sc SessionContext, index int, item *stripe.LineItem, product *stripe.Product, svc ResolvedService) (MaterializeResult, error) {
	user := m.lookupUser(ctx, sc.CustomerEmail)
	purchase := m.buildPurchase(sc, index, item, product, svc, user)

	result := MaterializeResult{Purchase: purchase}
	if err := m.purchases.Create(ctx, purchase); err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicate) {
			return result, &PersistError{Index: index, Err: err}
		}
		existing, findErr := m.purchases.FindByDedupKey(ctx, purchase.DedupKey)
		if findErr != nil {
			return result, &PersistError{Index: index, Err: findErr}
		}
		if err := m.promotePaid(ctx, existing, purchase); err != nil {
			return result, &PersistError{Index: index, Err: err}
		}
		result.Purchase = existing
		result.Duplicate = true
	} else if m.publisher != nil {
		if pubErr := m.publisher.PurchaseRecorded(ctx, *purchase); pubErr != nil && m.logg != nil {
			m.logg.WarnErr(ctx, "purchase event publish failed", pubErr)
		}
	}

	if result.Purchase.UserID == nil || m.entitlement == nil {
		return result, nil
	}
	consumption, err := m.entitlement.Upsert(ctx, *result.Purchase.UserID, *result.Purchase)
	if err != nil {
		return result, fmt.Errorf("upsert service consumption: %w", err)
	}
	result.Consumption = consumption
	return result, nil
}

// promotePaid settles a stored pending purchase when a later delivery for the
// same line item reports the session as paid.
func (m *Materializer) promotePaid(ctx context.Context, existing, incoming *models.Purchase) error {
	if incoming.PaymentStatus != enums.PaymentStatusPaid || existing.PaymentStatus == enums.PaymentStatusPaid {
		return nil
	}
	paidAt := m.now().UTC()
	if incoming.PaidAt != nil {
		paidAt = *incoming.PaidAt
	}
	if _, err := m.purchases.MarkPaidByDedupKey(ctx, existing.DedupKey, paidAt); err != nil {
		return fmt.Errorf("mark purchase paid: %w", err)
	}
	existing.PaymentStatus = enums.PaymentStatusPaid
	existing.PaidAt = &paidAt
	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "purchase_id", existing.ID), "pending purchase marked paid")
	}
	return nil
}

func (m *Materializer) lookupUser(ctx context.Context, email string) *models.User {
	email = strings.TrimSpace(email)
	if email == "" || m.users == nil {
		return nil
	}
	user, err := m.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrNotFound) && m.logg != nil {
			m.logg.WarnErr(ctx, "user lookup failed, recording purchase without user", err)
		}
		return nil
	}
	return user
}

func (m *Materializer) buildPurchase(sc SessionContext, index int, item *stripe.LineItem, product *stripe.Product, svc ResolvedService, user *models.User) *models.Purchase {
	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	var unitPrice int64
	var priceID string
	if item.Price != nil {
		unitPrice = item.Price.UnitAmount
		priceID = item.Price.ID
	}

	paymentStatus := enums.PaymentStatusPending
	var paidAt *time.Time
	now := m.now().UTC()
	if sc.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid) {
		paymentStatus = enums.PaymentStatusPaid
		paidAt = &now
	}

	purchase := &models.Purchase{
		DedupKey:              DedupKey(sc.SessionID, index),
		LineItemIndex:         index,
		UserEmail:             sc.CustomerEmail,
		UserName:              sc.CustomerName,
		StripeSessionID:       sc.SessionID,
		StripeCustomerID:      sc.CustomerID,
		StripePriceID:         priceID,
		StripePaymentIntentID: sc.PaymentIntentID,
		ServiceID:             svc.ServiceID,
		ServiceName:           svc.ServiceName,
		ServiceCategory:       svc.Category,
		ServiceType:           svc.ServiceType,
		Quantity:              quantity,
		UnitPrice:             unitPrice,
		TotalAmount:           unitPrice * quantity,
		Currency:              sc.Currency,
		Status:                enums.PurchaseStatusPurchased,
		PaymentStatus:         paymentStatus,
		PurchasedAt:           now,
		PaidAt:                paidAt,
	}
	if product != nil {
		purchase.StripeProductID = product.ID
	}
	if user != nil {
		userID := user.ID
		purchase.UserID = &userID
		if user.DisplayName != "" {
			purchase.UserName = user.DisplayName
		}
	}
	return purchase
}
