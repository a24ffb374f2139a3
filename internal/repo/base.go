package repo

import (
	"context"
	"errors"

	"github.com/angelmondragon/studio-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/studio-backend/pkg/errors"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Insert creates value and reports unique-key conflicts as ErrDuplicate.
func (b Base) Insert(ctx context.Context, value any) error {
	if err := b.DB(ctx).Create(value).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return pkgerrors.ErrDuplicate
		}
		return err
	}
	return nil
}

// First loads the first row matching query into dst and reports a missing row
// as ErrNotFound.
func (b Base) First(ctx context.Context, dst any, query string, args ...any) error {
	err := b.DB(ctx).Where(query, args...).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.ErrNotFound
	}
	return err
}
