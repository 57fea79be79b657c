package enums

import "fmt"

// AssociationStatus captures the lifecycle of a company association.
type AssociationStatus string

const (
	AssociationStatusPending   AssociationStatus = "pending"
	AssociationStatusActive    AssociationStatus = "active"
	AssociationStatusInactive  AssociationStatus = "inactive"
	AssociationStatusSuspended AssociationStatus = "suspended"
)

var validAssociationStatuses = []AssociationStatus{
	AssociationStatusPending,
	AssociationStatusActive,
	AssociationStatusInactive,
	AssociationStatusSuspended,
}

// String implements fmt.Stringer.
func (a AssociationStatus) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known AssociationStatus.
func (a AssociationStatus) IsValid() bool {
	for _, candidate := range validAssociationStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsDormant reports whether the status can be reactivated by a fresh code redemption.
func (a AssociationStatus) IsDormant() bool {
	return a == AssociationStatusInactive || a == AssociationStatusSuspended
}

// ParseAssociationStatus converts raw input into an AssociationStatus.
func ParseAssociationStatus(value string) (AssociationStatus, error) {
	for _, candidate := range validAssociationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid association status %q", value)
}
