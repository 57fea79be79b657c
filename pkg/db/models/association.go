package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Association holds the columns shared by dispatcher and driver association
// rows. A code-bearing row has InviteeID nil and Status pending; once the
// code is redeemed InviteCode and ExpiresAt are cleared and InviteeID is set.
type Association struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID  uuid.UUID               `gorm:"column:company_id;type:uuid;not null"`
	InviteeID  *uuid.UUID              `gorm:"column:invitee_id;type:uuid"`
	InviteCode *string                 `gorm:"column:invite_code;uniqueIndex"`
	Status     enums.AssociationStatus `gorm:"column:status;not null"`
	ExpiresAt  *time.Time              `gorm:"column:expires_at"`
	JoinedAt   *time.Time              `gorm:"column:joined_at"`
	InvitedBy  uuid.UUID               `gorm:"column:invited_by;type:uuid;not null"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// CodeExpired reports whether the row carries an expiry that has passed.
// A nil ExpiresAt means the code never expires.
func (a *Association) CodeExpired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}
