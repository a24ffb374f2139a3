package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/studio-backend/internal/repo"
	"github.com/angelmondragon/studio-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// FindByEmail retrieves the user whose email matches exactly. A miss returns
// errors.ErrNotFound.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.First(ctx, &user, "email = ?", strings.TrimSpace(email)); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.First(ctx, &user, "id = ?", id); err != nil {
		return nil, err
	}
	return &user, nil
}
