package models

import (
	"time"

	"github.com/angelmondragon/studio-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceConsumption is a user's entitlement to a purchased service. At most
// one row exists per (user, category, product).
type ServiceConsumption struct {
	ID              string                  `gorm:"type:text;primaryKey"`
	UserID          string                  `gorm:"column:user_id;not null;uniqueIndex:idx_consumption_key,priority:1"`
	ServiceCategory string                  `gorm:"column:service_category;not null;uniqueIndex:idx_consumption_key,priority:2"`
	StripeProductID string                  `gorm:"column:stripe_product_id;not null;uniqueIndex:idx_consumption_key,priority:3"`
	ServiceID       *string                 `gorm:"column:service_id"`
	ServiceName     string                  `gorm:"column:service_name;not null;default:''"`
	ServiceType     string                  `gorm:"column:service_type;not null;default:''"`
	// PurchaseID is the checkout session ID on creation and the latest purchase record ID after a merge.
	PurchaseID      string                  `gorm:"column:purchase_id;not null"`
	TotalAmount     int64                   `gorm:"column:total_amount;not null"`
	Currency        string                  `gorm:"column:currency;not null;default:''"`
	Status          enums.ConsumptionStatus `gorm:"column:status;type:text;not null"`
	StartDate       time.Time               `gorm:"column:start_date;not null"`
	Notes           string                  `gorm:"column:notes;not null;default:''"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (ServiceConsumption) TableName() string {
	return "service_consumption"
}

func (c *ServiceConsumption) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
