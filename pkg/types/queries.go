package types

import "github.com/angelmondragon/studio-backend/pkg/pagination"

// PurchaseQuery filters admin purchase listings. Empty fields match everything.
type PurchaseQuery struct {
	Email           string
	PaymentIntentID string
	pagination.Params
}

// ConsumptionQuery filters admin service consumption listings by user.
type ConsumptionQuery struct {
	UserID string
	pagination.Params
}
