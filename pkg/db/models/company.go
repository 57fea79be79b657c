package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Company represents the canonical tenant model: a carrier or a dispatch
// company that owns loads, expenses, and association rows.
type Company struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Type            enums.CompanyType `gorm:"column:type;not null"`
	Name            string            `gorm:"column:name;not null"`
	DBAName         *string           `gorm:"column:dba_name"`
	DOTNumber       *string           `gorm:"column:dot_number"`
	MCNumber        *string           `gorm:"column:mc_number"`
	Phone           *string           `gorm:"column:phone"`
	Email           *string           `gorm:"column:email"`
	OperatingStates pq.StringArray    `gorm:"column:operating_states;type:text[]"`
	OwnerID         uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	LastActiveAt    *time.Time        `gorm:"column:last_active_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
