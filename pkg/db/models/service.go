package models

import (
	"time"

	dbtypes "github.com/angelmondragon/studio-backend/pkg/db/types"
)

// Service is a catalog entry curated in the admin dashboard. It is read-only
// to the webhook pipeline.
type Service struct {
	ID             string               `gorm:"type:text;primaryKey"`
	Name           string               `gorm:"column:name;not null"`
	Category       string               `gorm:"column:category;not null;default:''"`
	SortOrder      int                  `gorm:"column:sort_order;not null;default:0"`
	LeftOfferings  dbtypes.OfferingList `gorm:"column:left_offerings;type:jsonb;not null;default:'[]'"`
	RightOfferings dbtypes.OfferingList `gorm:"column:right_offerings;type:jsonb;not null;default:'[]'"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// Offerings returns the left section followed by the right section.
func (s Service) Offerings() []dbtypes.Offering {
	out := make([]dbtypes.Offering, 0, len(s.LeftOfferings)+len(s.RightOfferings))
	out = append(out, s.LeftOfferings...)
	return append(out, s.RightOfferings...)
}
