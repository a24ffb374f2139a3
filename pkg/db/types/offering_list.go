package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Offering is one curated entry inside a service's left or right section.
// Price, when set, holds the payment provider price ID sold for it.
type Offering struct {
	Icon        string `json:"icon" firestore:"icon"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
	Price       string `json:"price,omitempty" firestore:"price,omitempty"`
}

// OfferingList is an ordered offering slice stored as JSON.
type OfferingList []Offering

// Value serializes the list to JSON text.
func (o OfferingList) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan decodes a JSON column into the list.
func (o *OfferingList) Scan(value any) error {
	if value == nil {
		*o = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("OfferingList: unsupported Scan type %T", value)
	}
	if len(raw) == 0 {
		*o = nil
		return nil
	}
	var decoded OfferingList
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("OfferingList: %w", err)
	}
	*o = decoded
	return nil
}
