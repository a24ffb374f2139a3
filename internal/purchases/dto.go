package purchases

import (
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
)

// PurchaseDTO is the transport shape returned by admin reads.
type PurchaseDTO struct {
	ID                    string     `json:"id"`
	UserID                *string    `json:"userId"`
	UserEmail             string     `json:"userEmail"`
	UserName              string     `json:"userName"`
	StripeSessionID       string     `json:"stripeSessionId"`
	StripeCustomerID      string     `json:"stripeCustomerId,omitempty"`
	StripeProductID       string     `json:"stripeProductId"`
	StripePriceID         string     `json:"stripePriceId"`
	StripePaymentIntentID string     `json:"stripePaymentIntentId,omitempty"`
	ServiceID             *string    `json:"serviceId"`
	ServiceName           string     `json:"serviceName"`
	Category              string     `json:"category"`
	ServiceType           string     `json:"serviceType"`
	Quantity              int64      `json:"quantity"`
	UnitPrice             int64      `json:"unitPrice"`
	TotalAmount           int64      `json:"totalAmount"`
	Currency              string     `json:"currency"`
	Status                string     `json:"status"`
	PaymentStatus         string     `json:"paymentStatus"`
	PurchaseDate          time.Time  `json:"purchaseDate"`
	PaidAt                *time.Time `json:"paidAt,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

func FromModel(p models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:                    p.ID,
		UserID:                p.UserID,
		UserEmail:             p.UserEmail,
		UserName:              p.UserName,
		StripeSessionID:       p.StripeSessionID,
		StripeCustomerID:      p.StripeCustomerID,
		StripeProductID:       p.StripeProductID,
		StripePriceID:         p.StripePriceID,
		StripePaymentIntentID: p.StripePaymentIntentID,
		ServiceID:             p.ServiceID,
		ServiceName:           p.ServiceName,
		Category:              p.ServiceCategory,
		ServiceType:           p.ServiceType,
		Quantity:              p.Quantity,
		UnitPrice:             p.UnitPrice,
		TotalAmount:           p.TotalAmount,
		Currency:              p.Currency,
		Status:                p.Status.String(),
		PaymentStatus:         p.PaymentStatus.String(),
		PurchaseDate:          p.PurchasedAt,
		PaidAt:                p.PaidAt,
		CreatedAt:             p.CreatedAt,
	}
}

func FromModels(rows []models.Purchase) []PurchaseDTO {
	out := make([]PurchaseDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
