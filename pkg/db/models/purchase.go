package models

import (
	"time"

	"github.com/angelmondragon/studio-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase records one checkout line item. DedupKey is derived from the
// session ID and line item index and is unique per store.
type Purchase struct {
	ID            string  `gorm:"type:text;primaryKey"`
	DedupKey      string  `gorm:"column:dedup_key;not null;uniqueIndex:idx_purchases_dedup_key"`
	LineItemIndex int     `gorm:"column:line_item_index;not null"`
	UserID        *string `gorm:"column:user_id;index"`
	UserEmail     string  `gorm:"column:user_email;not null;default:'';index"`
	UserName      string  `gorm:"column:user_name;not null;default:''"`

	StripeSessionID       string `gorm:"column:stripe_session_id;not null;index"`
	StripeCustomerID      string `gorm:"column:stripe_customer_id;not null;default:''"`
	StripeProductID       string `gorm:"column:stripe_product_id;not null;default:''"`
	StripePriceID         string `gorm:"column:stripe_price_id;not null;default:''"`
	StripePaymentIntentID string `gorm:"column:stripe_payment_intent_id;not null;default:'';index"`

	ServiceID       *string `gorm:"column:service_id"`
	ServiceName     string  `gorm:"column:service_name;not null;default:''"`
	ServiceCategory string  `gorm:"column:service_category;not null;default:''"`
	ServiceType     string  `gorm:"column:service_type;not null;default:''"`

	Quantity    int64  `gorm:"column:quantity;not null"`
	UnitPrice   int64  `gorm:"column:unit_price;not null"`
	TotalAmount int64  `gorm:"column:total_amount;not null"`
	Currency    string `gorm:"column:currency;not null;default:''"`

	Status        enums.PurchaseStatus `gorm:"column:status;type:text;not null"`
	PaymentStatus enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null"`

	PurchasedAt time.Time  `gorm:"column:purchased_at;not null"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Purchase) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
