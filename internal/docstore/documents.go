package docstore

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/angelmondragon/studio-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/studio-backend/pkg/db/types"
	"github.com/angelmondragon/studio-backend/pkg/enums"
)

// Collection names shared with the dashboard that curates the catalog.
const (
	CollectionUsers       = "users"
	CollectionServices    = "services"
	CollectionPurchases   = "purchases"
	CollectionConsumption = "serviceConsumption"
)

type userDoc struct {
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Role        string    `firestore:"role"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

func (d userDoc) toModel(id string) models.User {
	return models.User{
		ID:          id,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		Role:        d.Role,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type serviceDoc struct {
	Name           string             `firestore:"name"`
	Category       string             `firestore:"category"`
	SortOrder      int                `firestore:"sortOrder"`
	LeftOfferings  []dbtypes.Offering `firestore:"leftOfferings"`
	RightOfferings []dbtypes.Offering `firestore:"rightOfferings"`
	CreatedAt      time.Time          `firestore:"createdAt"`
	UpdatedAt      time.Time          `firestore:"updatedAt"`
}

func (d serviceDoc) toModel(id string) models.Service {
	return models.Service{
		ID:             id,
		Name:           d.Name,
		Category:       d.Category,
		SortOrder:      d.SortOrder,
		LeftOfferings:  dbtypes.OfferingList(d.LeftOfferings),
		RightOfferings: dbtypes.OfferingList(d.RightOfferings),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type purchaseDoc struct {
	ID                    string     `firestore:"id"`
	LineItemIndex         int        `firestore:"lineItemIndex"`
	UserID                *string    `firestore:"userId"`
	UserEmail             string     `firestore:"userEmail"`
	UserName              string     `firestore:"userName"`
	StripeSessionID       string     `firestore:"stripeSessionId"`
	StripeCustomerID      string     `firestore:"stripeCustomerId"`
	StripeProductID       string     `firestore:"stripeProductId"`
	StripePriceID         string     `firestore:"stripePriceId"`
	StripePaymentIntentID string     `firestore:"stripePaymentIntentId"`
	ServiceID             *string    `firestore:"serviceId"`
	ServiceName           string     `firestore:"serviceName"`
	ServiceCategory       string     `firestore:"category"`
	ServiceType           string     `firestore:"serviceType"`
	Quantity              int64      `firestore:"quantity"`
	UnitPrice             int64      `firestore:"unitPrice"`
	TotalAmount           int64      `firestore:"totalAmount"`
	Currency              string     `firestore:"currency"`
	Status                string     `firestore:"status"`
	PaymentStatus         string     `firestore:"paymentStatus"`
	PurchasedAt           time.Time  `firestore:"purchaseDate"`
	PaidAt                *time.Time `firestore:"paidAt"`
	CreatedAt             time.Time  `firestore:"createdAt"`
	UpdatedAt             time.Time  `firestore:"updatedAt"`
}

func purchaseToDoc(p models.Purchase) purchaseDoc {
	return purchaseDoc{
		ID:                    p.ID,
		LineItemIndex:         p.LineItemIndex,
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
		ServiceCategory:       p.ServiceCategory,
		ServiceType:           p.ServiceType,
		Quantity:              p.Quantity,
		UnitPrice:             p.UnitPrice,
		TotalAmount:           p.TotalAmount,
		Currency:              p.Currency,
		Status:                p.Status.String(),
		PaymentStatus:         p.PaymentStatus.String(),
		PurchasedAt:           p.PurchasedAt,
		PaidAt:                p.PaidAt,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

// toModel restores a purchase stored under the document ID dedupKey.
func (d purchaseDoc) toModel(dedupKey string) models.Purchase {
	return models.Purchase{
		ID:                    d.ID,
		DedupKey:              dedupKey,
		LineItemIndex:         d.LineItemIndex,
		UserID:                d.UserID,
		UserEmail:             d.UserEmail,
		UserName:              d.UserName,
		StripeSessionID:       d.StripeSessionID,
		StripeCustomerID:      d.StripeCustomerID,
		StripeProductID:       d.StripeProductID,
		StripePriceID:         d.StripePriceID,
		StripePaymentIntentID: d.StripePaymentIntentID,
		ServiceID:             d.ServiceID,
		ServiceName:           d.ServiceName,
		ServiceCategory:       d.ServiceCategory,
		ServiceType:           d.ServiceType,
		Quantity:              d.Quantity,
		UnitPrice:             d.UnitPrice,
		TotalAmount:           d.TotalAmount,
		Currency:              d.Currency,
		Status:                enums.PurchaseStatus(d.Status),
		PaymentStatus:         enums.PaymentStatus(d.PaymentStatus),
		PurchasedAt:           d.PurchasedAt,
		PaidAt:                d.PaidAt,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
}

type consumptionDoc struct {
	UserID          string    `firestore:"userId"`
	ServiceCategory string    `firestore:"serviceCategory"`
	StripeProductID string    `firestore:"stripeProductId"`
	ServiceID       *string   `firestore:"serviceId"`
	ServiceName     string    `firestore:"serviceName"`
	ServiceType     string    `firestore:"serviceType"`
	PurchaseID      string    `firestore:"purchaseId"`
	TotalAmount     int64     `firestore:"totalAmount"`
	Currency        string    `firestore:"currency"`
	Status          string    `firestore:"status"`
	StartDate       time.Time `firestore:"startDate"`
	Notes           string    `firestore:"notes"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

func consumptionToDoc(c models.ServiceConsumption) consumptionDoc {
	return consumptionDoc{
		UserID:          c.UserID,
		ServiceCategory: c.ServiceCategory,
		StripeProductID: c.StripeProductID,
		ServiceID:       c.ServiceID,
		ServiceName:     c.ServiceName,
		ServiceType:     c.ServiceType,
		PurchaseID:      c.PurchaseID,
		TotalAmount:     c.TotalAmount,
		Currency:        c.Currency,
		Status:          c.Status.String(),
		StartDate:       c.StartDate,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (d consumptionDoc) toModel(id string) models.ServiceConsumption {
	return models.ServiceConsumption{
		ID:              id,
		UserID:          d.UserID,
		ServiceCategory: d.ServiceCategory,
		StripeProductID: d.StripeProductID,
		ServiceID:       d.ServiceID,
		ServiceName:     d.ServiceName,
		ServiceType:     d.ServiceType,
		PurchaseID:      d.PurchaseID,
		TotalAmount:     d.TotalAmount,
		Currency:        d.Currency,
		Status:          enums.ConsumptionStatus(d.Status),
		StartDate:       d.StartDate,
		Notes:           d.Notes,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// consumptionDocID derives the document ID that makes the lookup key unique.
func consumptionDocID(userID, category, productID string) string {
	sum := sha256.Sum256([]byte(userID + "\x00" + category + "\x00" + productID))
	return hex.EncodeToString(sum[:])
}
