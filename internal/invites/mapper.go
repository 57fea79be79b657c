package invites

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/invitecode"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
)

// feeExtractor extracts the dispatcher fee from a row, nil for drivers. Concrete
// services supply it so the generic mapping stays kind-agnostic.
type feeExtractor[PT any] func(row PT) *decimal.Decimal

func dispatcherFee(row *models.DispatcherAssociation) *decimal.Decimal {
	fee := row.FeePercentage
	return &fee
}

func driverFee(row *models.DriverAssociation) *decimal.Decimal { return nil }

func inviteFromModel(assoc *models.Association, kind enums.InviteeKind, fee *decimal.Decimal) *InviteDTO {
	code := ""
	if assoc.InviteCode != nil {
		code = *assoc.InviteCode
	}
	return &InviteDTO{
		AssociationID: assoc.ID,
		CompanyID:     assoc.CompanyID,
		Kind:          kind,
		Code:          code,
		DisplayCode:   invitecode.Format(code, invitecode.StyleDashed),
		FeePercentage: fee,
		ExpiresAt:     cloneTime(assoc.ExpiresAt),
		CreatedAt:     assoc.CreatedAt,
	}
}

func associationFromModel(assoc *models.Association, kind enums.InviteeKind, fee *decimal.Decimal) AssociationDTO {
	return AssociationDTO{
		AssociationID: assoc.ID,
		CompanyID:     assoc.CompanyID,
		InviteeID:     cloneUUID(assoc.InviteeID),
		Kind:          kind,
		Status:        assoc.Status,
		FeePercentage: fee,
		JoinedAt:      cloneTime(assoc.JoinedAt),
		CreatedAt:     assoc.CreatedAt,
	}
}

func issuedPayload(assoc *models.Association, kind enums.InviteeKind) payloads.InviteIssuedEvent {
	return payloads.InviteIssuedEvent{
		AssociationID: assoc.ID,
		CompanyID:     assoc.CompanyID,
		Kind:          kind,
		ExpiresAt:     cloneTime(assoc.ExpiresAt),
	}
}

func revokedPayload(associationID, companyID uuid.UUID, kind enums.InviteeKind) payloads.InviteRevokedEvent {
	return payloads.InviteRevokedEvent{
		AssociationID: associationID,
		CompanyID:     companyID,
		Kind:          kind,
	}
}

func activatedPayload(associationID, companyID, inviteeID uuid.UUID, kind enums.InviteeKind, reactivated bool, joinedAt time.Time) payloads.AssociationActivatedEvent {
	return payloads.AssociationActivatedEvent{
		AssociationID: associationID,
		CompanyID:     companyID,
		InviteeID:     inviteeID,
		Kind:          kind,
		Reactivated:   reactivated,
		JoinedAt:      joinedAt,
	}
}

func deactivatedPayload(associationID, companyID, inviteeID uuid.UUID, kind enums.InviteeKind) payloads.AssociationDeactivatedEvent {
	return payloads.AssociationDeactivatedEvent{
		AssociationID: associationID,
		CompanyID:     companyID,
		InviteeID:     inviteeID,
		Kind:          kind,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	copied := *id
	return &copied
}
