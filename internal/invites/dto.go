package invites

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/internal/companies"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// GenerateCodeInput carries what the owner decides at issue time. The fee is
// only meaningful for dispatcher invites and is ignored for drivers.
type GenerateCodeInput struct {
	CompanyID     uuid.UUID
	ExpiresInDays *int
	FeePercentage *decimal.Decimal
}

// InviteDTO describes a pending invite, code included. This is the only
// surface the raw code ever crosses; events and logs never carry it.
type InviteDTO struct {
	AssociationID uuid.UUID         `json:"associationId"`
	CompanyID     uuid.UUID         `json:"companyId"`
	Kind          enums.InviteeKind `json:"kind"`
	Code          string            `json:"code"`
	DisplayCode   string            `json:"displayCode"`
	FeePercentage *decimal.Decimal  `json:"feePercentage,omitempty"`
	ExpiresAt     *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// PreviewDTO is what a prospective member sees before accepting: the company
// identity and the terms, never the other party's contact details.
type PreviewDTO struct {
	Company       companies.CompanySummaryDTO `json:"company"`
	Kind          enums.InviteeKind           `json:"kind"`
	FeePercentage *decimal.Decimal            `json:"feePercentage,omitempty"`
	ExpiresAt     *time.Time                  `json:"expiresAt,omitempty"`
}

// RedeemResultDTO reports the outcome of a successful redemption.
type RedeemResultDTO struct {
	AssociationID uuid.UUID               `json:"associationId"`
	CompanyID     uuid.UUID               `json:"companyId"`
	Kind          enums.InviteeKind       `json:"kind"`
	Status        enums.AssociationStatus `json:"status"`
	JoinedAt      time.Time               `json:"joinedAt"`
	Reactivated   bool                    `json:"reactivated"`
}

// AssociationDTO describes an established association row.
type AssociationDTO struct {
	AssociationID uuid.UUID               `json:"associationId"`
	CompanyID     uuid.UUID               `json:"companyId"`
	InviteeID     *uuid.UUID              `json:"inviteeId,omitempty"`
	Kind          enums.InviteeKind       `json:"kind"`
	Status        enums.AssociationStatus `json:"status"`
	FeePercentage *decimal.Decimal        `json:"feePercentage,omitempty"`
	JoinedAt      *time.Time              `json:"joinedAt,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}
