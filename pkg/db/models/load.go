package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Load represents a shipment owned by a company. DriverAssociationID, when
// set, must reference an active driver association of the same company.
type Load struct {
	ID                  uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID           uuid.UUID        `gorm:"column:company_id;type:uuid;not null;index"`
	Reference           string           `gorm:"column:reference;not null"`
	Origin              string           `gorm:"column:origin;not null"`
	Destination         string           `gorm:"column:destination;not null"`
	Status              enums.LoadStatus `gorm:"column:status;not null"`
	Rate                decimal.Decimal  `gorm:"column:rate;type:numeric(12,2);not null"`
	EquipmentRequired   pq.StringArray   `gorm:"column:equipment_required;type:text[]"`
	DriverAssociationID *uuid.UUID       `gorm:"column:driver_association_id;type:uuid"`
	PickupAt            *time.Time       `gorm:"column:pickup_at"`
	DeliveredAt         *time.Time       `gorm:"column:delivered_at"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *Load) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
