package catalog

import (
	"context"

	"github.com/angelmondragon/studio-backend/internal/repo"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the curated service catalog.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListServices returns every catalog entry in display order.
func (r *Repository) ListServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.DB(ctx).
		Order("sort_order ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&services).Error
	if err != nil {
		return nil, err
	}
	return services, nil
}
