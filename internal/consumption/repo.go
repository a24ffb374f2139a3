package consumption

import (
	"context"

	"github.com/angelmondragon/studio-backend/internal/repo"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"github.com/angelmondragon/studio-backend/pkg/pagination"
	"github.com/angelmondragon/studio-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository persists service consumption records.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindByKey(ctx context.Context, userID, category, productID string) (*models.ServiceConsumption, error) {
	var row models.ServiceConsumption
	err := r.First(ctx, &row,
		"user_id = ? AND service_category = ? AND stripe_product_id = ?",
		userID, category, productID,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts c; a taken (user, category, product) key returns
// errors.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, c *models.ServiceConsumption) error {
	return r.Insert(ctx, c)
}

// Update saves every column of c.
func (r *Repository) Update(ctx context.Context, c *models.ServiceConsumption) error {
	return r.DB(ctx).Save(c).Error
}

// List returns a user's records newest first and the cursor of the next page.
func (r *Repository) List(ctx context.Context, q types.ConsumptionQuery) ([]models.ServiceConsumption, string, error) {
	query := r.DB(ctx).Model(&models.ServiceConsumption{}).Where("user_id = ?", q.UserID)
	cursor, err := pagination.ParseCursor(q.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where("((created_at < ?) OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.ServiceConsumption
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(q.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, q.Limit, func(c models.ServiceConsumption) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page, next, nil
}
