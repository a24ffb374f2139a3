package enums

import "fmt"

// ConsumptionStatus is the lifecycle of a user's access to a service.
type ConsumptionStatus string

const (
	ConsumptionStatusPurchased ConsumptionStatus = "purchased"
	ConsumptionStatusActive    ConsumptionStatus = "active"
	ConsumptionStatusCompleted ConsumptionStatus = "completed"
	ConsumptionStatusPaused    ConsumptionStatus = "paused"
	ConsumptionStatusCancelled ConsumptionStatus = "cancelled"
)

var validConsumptionStatuses = []ConsumptionStatus{
	ConsumptionStatusPurchased,
	ConsumptionStatusActive,
	ConsumptionStatusCompleted,
	ConsumptionStatusPaused,
	ConsumptionStatusCancelled,
}

// String implements fmt.Stringer.
func (s ConsumptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ConsumptionStatus.
func (s ConsumptionStatus) IsValid() bool {
	for _, candidate := range validConsumptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConsumptionStatus converts raw input into a ConsumptionStatus.
func ParseConsumptionStatus(value string) (ConsumptionStatus, error) {
	for _, candidate := range validConsumptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumption status %q", value)
}
