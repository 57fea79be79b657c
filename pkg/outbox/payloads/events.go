package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// AssociationActivatedEvent is emitted when an invite redemption (or a
// reactivation) flips an association to active.
type AssociationActivatedEvent struct {
	AssociationID uuid.UUID         `json:"association_id"`
	CompanyID     uuid.UUID         `json:"company_id"`
	InviteeID     uuid.UUID         `json:"invitee_id"`
	Kind          enums.InviteeKind `json:"kind"`
	Reactivated   bool              `json:"reactivated"`
	JoinedAt      time.Time         `json:"joined_at"`
}

// AssociationDeactivatedEvent is emitted when an owner removes a member or
// revokes an already-used association.
type AssociationDeactivatedEvent struct {
	AssociationID uuid.UUID         `json:"association_id"`
	CompanyID     uuid.UUID         `json:"company_id"`
	InviteeID     uuid.UUID         `json:"invitee_id"`
	Kind          enums.InviteeKind `json:"kind"`
}

// InviteIssuedEvent is emitted when a fresh pending invite row is created.
// The code itself never leaves the primary store.
type InviteIssuedEvent struct {
	AssociationID uuid.UUID         `json:"association_id"`
	CompanyID     uuid.UUID         `json:"company_id"`
	Kind          enums.InviteeKind `json:"kind"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}

// InviteRevokedEvent is emitted when an unused pending invite is deleted.
type InviteRevokedEvent struct {
	AssociationID uuid.UUID         `json:"association_id"`
	CompanyID     uuid.UUID         `json:"company_id"`
	Kind          enums.InviteeKind `json:"kind"`
}

// LoadAssignedEvent is emitted when a load is bound to a driver association.
type LoadAssignedEvent struct {
	LoadID              uuid.UUID       `json:"load_id"`
	CompanyID           uuid.UUID       `json:"company_id"`
	DriverAssociationID uuid.UUID       `json:"driver_association_id"`
	Rate                decimal.Decimal `json:"rate"`
}

// LoadUnassignedEvent is emitted when a driver association is released from
// a load before pickup.
type LoadUnassignedEvent struct {
	LoadID              uuid.UUID `json:"load_id"`
	CompanyID           uuid.UUID `json:"company_id"`
	DriverAssociationID uuid.UUID `json:"driver_association_id"`
}

// LoadStatusChangedEvent is emitted on load status transitions.
type LoadStatusChangedEvent struct {
	LoadID    uuid.UUID        `json:"load_id"`
	CompanyID uuid.UUID        `json:"company_id"`
	Status    enums.LoadStatus `json:"status"`
}
