package enums

import "fmt"

// InviteeKind distinguishes the two association variants.
type InviteeKind string

const (
	InviteeKindDispatcher InviteeKind = "dispatcher"
	InviteeKindDriver     InviteeKind = "driver"
)

var validInviteeKinds = []InviteeKind{
	InviteeKindDispatcher,
	InviteeKindDriver,
}

// String implements fmt.Stringer.
func (k InviteeKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known InviteeKind.
func (k InviteeKind) IsValid() bool {
	for _, candidate := range validInviteeKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseInviteeKind converts raw input into an InviteeKind.
func ParseInviteeKind(value string) (InviteeKind, error) {
	for _, candidate := range validInviteeKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invitee kind %q", value)
}
