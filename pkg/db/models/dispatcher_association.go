package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DispatcherAssociation links a company with a dispatcher. The fee percentage
// is decided by the owner at code-generation time and may be updated later
// without touching the association status.
type DispatcherAssociation struct {
	Association
	FeePercentage decimal.Decimal `gorm:"column:fee_percentage;type:numeric(5,2);not null;default:0"`
}

func (DispatcherAssociation) TableName() string { return "dispatcher_associations" }

func (a *DispatcherAssociation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Assoc exposes the shared association columns for generic handling.
func (a *DispatcherAssociation) Assoc() *Association { return &a.Association }
