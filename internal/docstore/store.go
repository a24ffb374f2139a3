package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	fsclient "github.com/angelmondragon/studio-backend/pkg/firestore"
	"github.com/angelmondragon/studio-backend/pkg/pagination"
	"github.com/angelmondragon/studio-backend/pkg/types"
	"github.com/google/uuid"
)

// Users resolves identities from the users collection.
type Users struct {
	fs *firestore.Client
}

func NewUsers(fs *firestore.Client) *Users { return &Users{fs: fs} }

func (u *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := u.fs.Collection(CollectionUsers).
		Where("email", "==", strings.TrimSpace(email)).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("query users by email: %w", err)
	}
	if len(snaps) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	var doc userDoc
	if err := snaps[0].DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snaps[0].Ref.ID, err)
	}
	user := doc.toModel(snaps[0].Ref.ID)
	return &user, nil
}

// Catalog reads the services collection.
type Catalog struct {
	fs *firestore.Client
}

func NewCatalog(fs *firestore.Client) *Catalog { return &Catalog{fs: fs} }

func (c *Catalog) ListServices(ctx context.Context) ([]models.Service, error) {
	// Ordering on sortOrder server side would drop documents without the field.
	snaps, err := c.fs.Collection(CollectionServices).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	services := make([]models.Service, 0, len(snaps))
	for _, snap := range snaps {
		var doc serviceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode service %s: %w", snap.Ref.ID, err)
		}
		services = append(services, doc.toModel(snap.Ref.ID))
	}
	sortServices(services)
	return services, nil
}

// sortServices orders by sort order, then by ID.
func sortServices(services []models.Service) {
	sort.SliceStable(services, func(i, j int) bool {
		if services[i].SortOrder != services[j].SortOrder {
			return services[i].SortOrder < services[j].SortOrder
		}
		return services[i].ID < services[j].ID
	})
}

// Purchases stores one document per line item under its dedup key.
type Purchases struct {
	fs  *firestore.Client
	now func() time.Time
}

func NewPurchases(fs *firestore.Client, now func() time.Time) *Purchases {
	if now == nil {
		now = time.Now
	}
	return &Purchases{fs: fs, now: now}
}

func (p *Purchases) Create(ctx context.Context, purchase *models.Purchase) error {
	if purchase.DedupKey == "" {
		return errors.New("purchase dedup key is required")
	}
	if purchase.ID == "" {
		purchase.ID = uuid.NewString()
	}
	now := p.now().UTC()
	if purchase.CreatedAt.IsZero() {
		purchase.CreatedAt = now
	}
	purchase.UpdatedAt = now

	_, err := p.fs.Collection(CollectionPurchases).Doc(purchase.DedupKey).Create(ctx, purchaseToDoc(*purchase))
	if err != nil {
		if fsclient.IsAlreadyExists(err) {
			return pkgerrors.ErrDuplicate
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (p *Purchases) FindByDedupKey(ctx context.Context, key string) (*models.Purchase, error) {
	snap, err := p.fs.Collection(CollectionPurchases).Doc(key).Get(ctx)
	if err != nil {
		if fsclient.IsNotFound(err) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	var doc purchaseDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode purchase %s: %w", key, err)
	}
	purchase := doc.toModel(snap.Ref.ID)
	return &purchase, nil
}

// MarkPaidByDedupKey settles the purchase document under key if it is not
// already paid.
func (p *Purchases) MarkPaidByDedupKey(ctx context.Context, key string, paidAt time.Time) (bool, error) {
	ref := p.fs.Collection(CollectionPurchases).Doc(key)

	var updated bool
	err := p.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = false
		snap, err := tx.Get(ref)
		if err != nil {
			if fsclient.IsNotFound(err) {
				return pkgerrors.ErrNotFound
			}
			return err
		}
		var doc purchaseDoc
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.PaymentStatus == enums.PaymentStatusPaid.String() {
			return nil
		}
		updated = true
		return tx.Update(ref, []firestore.Update{
			{Path: "paymentStatus", Value: enums.PaymentStatusPaid.String()},
			{Path: "paidAt", Value: paidAt},
			{Path: "updatedAt", Value: paidAt},
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("mark purchase paid: %w", err)
	}
	return updated, nil
}

// MarkPaidByPaymentIntent updates every matching document in one transaction.
func (p *Purchases) MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string, paidAt time.Time) (int, error) {
	query := p.fs.Collection(CollectionPurchases).Where("stripePaymentIntentId", "==", paymentIntentID)

	var updated int
	err := p.fs.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		updated = 0
		snaps, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			err := tx.Update(snap.Ref, []firestore.Update{
				{Path: "paymentStatus", Value: enums.PaymentStatusPaid.String()},
				{Path: "paidAt", Value: paidAt},
				{Path: "updatedAt", Value: paidAt},
			})
			if err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark purchases paid: %w", err)
	}
	return updated, nil
}

// List returns purchases newest first and the cursor of the next page.
func (p *Purchases) List(ctx context.Context, q types.PurchaseQuery) ([]models.Purchase, string, error) {
	query := p.fs.Collection(CollectionPurchases).Query
	if email := strings.TrimSpace(q.Email); email != "" {
		query = query.Where("userEmail", "==", email)
	}
	if intent := strings.TrimSpace(q.PaymentIntentID); intent != "" {
		query = query.Where("stripePaymentIntentId", "==", intent)
	}
	query, err := pageQuery(query, q.Params)
	if err != nil {
		return nil, "", err
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("list purchases: %w", err)
	}
	rows := make([]models.Purchase, 0, len(snaps))
	for _, snap := range snaps {
		var doc purchaseDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, "", fmt.Errorf("decode purchase %s: %w", snap.Ref.ID, err)
		}
		rows = append(rows, doc.toModel(snap.Ref.ID))
	}
	page, next := pagination.Trim(rows, q.Limit, func(p models.Purchase) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.DedupKey}
	})
	return page, next, nil
}

// Consumption stores entitlements under a document ID derived from their key.
type Consumption struct {
	fs  *firestore.Client
	now func() time.Time
}

func NewConsumption(fs *firestore.Client, now func() time.Time) *Consumption {
	if now == nil {
		now = time.Now
	}
	return &Consumption{fs: fs, now: now}
}

func (c *Consumption) FindByKey(ctx context.Context, userID, category, productID string) (*models.ServiceConsumption, error) {
	id := consumptionDocID(userID, category, productID)
	snap, err := c.fs.Collection(CollectionConsumption).Doc(id).Get(ctx)
	if err != nil {
		if fsclient.IsNotFound(err) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, fmt.Errorf("get service consumption: %w", err)
	}
	var doc consumptionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode service consumption %s: %w", id, err)
	}
	row := doc.toModel(snap.Ref.ID)
	return &row, nil
}

func (c *Consumption) Create(ctx context.Context, row *models.ServiceConsumption) error {
	row.ID = consumptionDocID(row.UserID, row.ServiceCategory, row.StripeProductID)
	now := c.now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	_, err := c.fs.Collection(CollectionConsumption).Doc(row.ID).Create(ctx, consumptionToDoc(*row))
	if err != nil {
		if fsclient.IsAlreadyExists(err) {
			return pkgerrors.ErrDuplicate
		}
		return fmt.Errorf("create service consumption: %w", err)
	}
	return nil
}

func (c *Consumption) Update(ctx context.Context, row *models.ServiceConsumption) error {
	if row.ID == "" {
		return errors.New("service consumption id is required")
	}
	if _, err := c.fs.Collection(CollectionConsumption).Doc(row.ID).Set(ctx, consumptionToDoc(*row)); err != nil {
		return fmt.Errorf("update service consumption: %w", err)
	}
	return nil
}

// List returns a user's records newest first and the cursor of the next page.
func (c *Consumption) List(ctx context.Context, q types.ConsumptionQuery) ([]models.ServiceConsumption, string, error) {
	query := c.fs.Collection(CollectionConsumption).Where("userId", "==", q.UserID)
	query, err := pageQuery(query, q.Params)
	if err != nil {
		return nil, "", err
	}

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("list service consumption: %w", err)
	}
	rows := make([]models.ServiceConsumption, 0, len(snaps))
	for _, snap := range snaps {
		var doc consumptionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, "", fmt.Errorf("decode service consumption %s: %w", snap.Ref.ID, err)
		}
		rows = append(rows, doc.toModel(snap.Ref.ID))
	}
	page, next := pagination.Trim(rows, q.Limit, func(r models.ServiceConsumption) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})
	return page, next, nil
}

// pageQuery orders by (createdAt, document ID) descending and applies the cursor.
func pageQuery(query firestore.Query, params pagination.Params) (firestore.Query, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return query, err
	}
	query = query.
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc).
		Limit(pagination.LimitWithBuffer(params.Limit))
	if cursor != nil {
		query = query.StartAfter(cursor.CreatedAt, cursor.ID)
	}
	return query, nil
}
