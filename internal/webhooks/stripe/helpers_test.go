package stripewebhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/studio-backend/pkg/db/types"
	"github.com/angelmondragon/studio-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubProvider struct {
	sessions        map[string]*stripe.CheckoutSession
	expandErr       error
	bareErr         error
	lineItems       []*stripe.LineItem
	lineItemsErr    error
	products        map[string]*stripe.Product
	productErrs     map[string]error
	customers       map[string]*stripe.Customer
	customerErr     error
	sessionCalls    []bool
	listCalls       int
	productRequests []string
}

func (s *stubProvider) GetSession(_ context.Context, id string, expand bool) (*stripe.CheckoutSession, error) {
	s.sessionCalls = append(s.sessionCalls, expand)
	if expand && s.expandErr != nil {
		return nil, s.expandErr
	}
	if !expand && s.bareErr != nil {
		return nil, s.bareErr
	}
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	if !expand {
		bare := *session
		bare.LineItems = nil
		return &bare, nil
	}
	return session, nil
}

func (s *stubProvider) ListLineItems(context.Context, string) ([]*stripe.LineItem, error) {
	s.listCalls++
	if s.lineItemsErr != nil {
		return nil, s.lineItemsErr
	}
	return s.lineItems, nil
}

func (s *stubProvider) GetProduct(_ context.Context, id string) (*stripe.Product, error) {
	s.productRequests = append(s.productRequests, id)
	if err := s.productErrs[id]; err != nil {
		return nil, err
	}
	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("no such product: %s", id)
	}
	return product, nil
}

func (s *stubProvider) GetCustomer(_ context.Context, id string) (*stripe.Customer, error) {
	if s.customerErr != nil {
		return nil, s.customerErr
	}
	customer, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("no such customer: %s", id)
	}
	return customer, nil
}

type memUsers struct {
	byEmail map[string]models.User
	err     error
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.byEmail[email]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return &user, nil
}

type memCatalog struct {
	services []models.Service
	err      error
}

func (m *memCatalog) ListServices(context.Context) ([]models.Service, error) {
	return m.services, m.err
}

type memPurchases struct {
	mu        sync.Mutex
	rows      []*models.Purchase
	createErr func(p *models.Purchase) error
	markErr   error
	markCalls int
	keyMarks  int
}

func (m *memPurchases) Create(_ context.Context, p *models.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		if err := m.createErr(p); err != nil {
			return err
		}
	}
	for _, row := range m.rows {
		if row.DedupKey == p.DedupKey {
			return pkgerrors.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	stored := *p
	m.rows = append(m.rows, &stored)
	return nil
}

func (m *memPurchases) FindByDedupKey(_ context.Context, key string) (*models.Purchase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.DedupKey == key {
			found := *row
			return &found, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memPurchases) MarkPaidByDedupKey(_ context.Context, key string, paidAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyMarks++
	if m.markErr != nil {
		return false, m.markErr
	}
	for _, row := range m.rows {
		if row.DedupKey != key {
			continue
		}
		if row.PaymentStatus == enums.PaymentStatusPaid {
			return false, nil
		}
		at := paidAt
		row.PaymentStatus = enums.PaymentStatusPaid
		row.PaidAt = &at
		return true, nil
	}
	return false, pkgerrors.ErrNotFound
}

func (m *memPurchases) MarkPaidByPaymentIntent(_ context.Context, paymentIntentID string, paidAt time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markCalls++
	if m.markErr != nil {
		return 0, m.markErr
	}
	updated := 0
	for _, row := range m.rows {
		if row.StripePaymentIntentID != paymentIntentID {
			continue
		}
		at := paidAt
		row.PaymentStatus = enums.PaymentStatusPaid
		row.PaidAt = &at
		updated++
	}
	return updated, nil
}

type memConsumption struct {
	mu        sync.Mutex
	rows      []*models.ServiceConsumption
	findErr   error
	createErr error
	updateErr error
	creates   int
	updates   int
	// beforeCreate runs once ahead of the first Create to simulate a racing writer.
	beforeCreate func(m *memConsumption)
}

func (m *memConsumption) FindByKey(_ context.Context, userID, category, productID string) (*models.ServiceConsumption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, row := range m.rows {
		if row.UserID == userID && row.ServiceCategory == category && row.StripeProductID == productID {
			found := *row
			return &found, nil
		}
	}
	return nil, pkgerrors.ErrNotFound
}

func (m *memConsumption) Create(_ context.Context, c *models.ServiceConsumption) error {
	m.mu.Lock()
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook(m)
	}
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, row := range m.rows {
		if row.UserID == c.UserID && row.ServiceCategory == c.ServiceCategory && row.StripeProductID == c.StripeProductID {
			return pkgerrors.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.creates++
	stored := *c
	m.rows = append(m.rows, &stored)
	return nil
}

func (m *memConsumption) Update(_ context.Context, c *models.ServiceConsumption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, row := range m.rows {
		if row.ID == c.ID {
			m.updates++
			stored := *c
			m.rows[i] = &stored
			return nil
		}
	}
	return pkgerrors.ErrNotFound
}

type recordingPublisher struct {
	published []models.Purchase
	err       error
}

func (r *recordingPublisher) PurchaseRecorded(_ context.Context, p models.Purchase) error {
	r.published = append(r.published, p)
	return r.err
}

func expandedProduct(id, name string, metadata map[string]string) *stripe.Product {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &stripe.Product{ID: id, Object: "product", Name: name, Metadata: metadata}
}

func lineItem(priceID string, quantity, unitAmount int64, product *stripe.Product) *stripe.LineItem {
	return &stripe.LineItem{
		ID:       "li_" + priceID,
		Quantity: quantity,
		Price: &stripe.Price{
			ID:         priceID,
			UnitAmount: unitAmount,
			Product:    product,
		},
	}
}

func catalogService(id, category string, left, right []dbtypes.Offering) models.Service {
	return models.Service{
		ID:             id,
		Name:           id,
		Category:       category,
		LeftOfferings:  left,
		RightOfferings: right,
	}
}

// signHeader builds a stripe-signature header value for payload.
func signHeader(secret string, payload []byte, at time.Time) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}

var errBoom = errors.New("boom")
