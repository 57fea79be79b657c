package enums

import "fmt"

// LoadStatus captures the lifecycle of a freight load.
type LoadStatus string

const (
	LoadStatusOpen      LoadStatus = "open"
	LoadStatusAssigned  LoadStatus = "assigned"
	LoadStatusInTransit LoadStatus = "in_transit"
	LoadStatusDelivered LoadStatus = "delivered"
	LoadStatusCancelled LoadStatus = "cancelled"
)

var validLoadStatuses = []LoadStatus{
	LoadStatusOpen,
	LoadStatusAssigned,
	LoadStatusInTransit,
	LoadStatusDelivered,
	LoadStatusCancelled,
}

// String implements fmt.Stringer.
func (l LoadStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LoadStatus.
func (l LoadStatus) IsValid() bool {
	for _, candidate := range validLoadStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLoadStatus converts raw input into a LoadStatus.
func ParseLoadStatus(value string) (LoadStatus, error) {
	for _, candidate := range validLoadStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid load status %q", value)
}
