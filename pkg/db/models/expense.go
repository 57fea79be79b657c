package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Expense is a single cost entry booked against a company, optionally tied
// to a load.
type Expense struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID   uuid.UUID             `gorm:"column:company_id;type:uuid;not null;index"`
	Category    enums.ExpenseCategory `gorm:"column:category;not null"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	Description *string               `gorm:"column:description"`
	LoadID      *uuid.UUID            `gorm:"column:load_id;type:uuid"`
	IncurredAt  time.Time             `gorm:"column:incurred_at;not null"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
