package consumption

import (
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
)

// ServiceConsumptionDTO is the transport shape returned by admin reads.
type ServiceConsumptionDTO struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	ServiceID       *string   `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	ServiceCategory string    `json:"serviceCategory"`
	ServiceType     string    `json:"serviceType"`
	StripeProductID string    `json:"stripeProductId"`
	PurchaseID      string    `json:"purchaseId"`
	TotalAmount     int64     `json:"totalAmount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	StartDate       time.Time `json:"startDate"`
	Notes           string    `json:"notes"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func FromModels(rows []models.ServiceConsumption) []ServiceConsumptionDTO {
	out := make([]ServiceConsumptionDTO, 0, len(rows))
	for _, c := range rows {
		out = append(out, ServiceConsumptionDTO{
			ID:              c.ID,
			UserID:          c.UserID,
			ServiceID:       c.ServiceID,
			ServiceName:     c.ServiceName,
			ServiceCategory: c.ServiceCategory,
			ServiceType:     c.ServiceType,
			StripeProductID: c.StripeProductID,
			PurchaseID:      c.PurchaseID,
			TotalAmount:     c.TotalAmount,
			Currency:        c.Currency,
			Status:          c.Status.String(),
			StartDate:       c.StartDate,
			Notes:           c.Notes,
			UpdatedAt:       c.UpdatedAt,
		})
	}
	return out
}
