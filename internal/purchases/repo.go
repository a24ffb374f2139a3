package purchases

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/studio-backend/internal/repo"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/enums"
	"github.com/angelmondragon/studio-backend/pkg/pagination"
	"github.com/angelmondragon/studio-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository persists purchase records.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts purchase. A second insert for the same dedup key returns
// errors.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) error {
	return r.Insert(ctx, purchase)
}

func (r *Repository) FindByDedupKey(ctx context.Context, key string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.First(ctx, &purchase, "dedup_key = ?", key); err != nil {
		return nil, err
	}
	return &purchase, nil
}

// MarkPaidByDedupKey settles the purchase stored under key if it is not
// already paid.
func (r *Repository) MarkPaidByDedupKey(ctx context.Context, key string, paidAt time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Purchase{}).
		Where("dedup_key = ? AND payment_status <> ?", key, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
			"updated_at":     paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkPaidByPaymentIntent flips every purchase for the intent to paid in one
// statement and returns the number of rows matched.
func (r *Repository) MarkPaidByPaymentIntent(ctx context.Context, paymentIntentID string, paidAt time.Time) (int, error) {
	res := r.DB(ctx).
		Model(&models.Purchase{}).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
			"updated_at":     paidAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// List returns purchases newest first and the cursor of the next page.
func (r *Repository) List(ctx context.Context, q types.PurchaseQuery) ([]models.Purchase, string, error) {
	query := r.DB(ctx).Model(&models.Purchase{})
	if email := strings.TrimSpace(q.Email); email != "" {
		query = query.Where("user_email = ?", email)
	}
	if intent := strings.TrimSpace(q.PaymentIntentID); intent != "" {
		query = query.Where("stripe_payment_intent_id = ?", intent)
	}
	cursor, err := pagination.ParseCursor(q.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Purchase
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, q.Limit, func(p models.Purchase) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return page, next, nil
}
