package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DriverAssociation links a company with a driver.
type DriverAssociation struct {
	Association
}

func (DriverAssociation) TableName() string { return "driver_associations" }

func (a *DriverAssociation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Assoc exposes the shared association columns for generic handling.
func (a *DriverAssociation) Assoc() *Association { return &a.Association }
