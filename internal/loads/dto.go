package loads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgpagination "github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// CreateLoadInput holds the data for booking a new load.
type CreateLoadInput struct {
	Reference         string          `json:"reference" validate:"required"`
	Origin            string          `json:"origin" validate:"required"`
	Destination       string          `json:"destination" validate:"required"`
	Rate              decimal.Decimal `json:"rate"`
	EquipmentRequired []string        `json:"equipment_required,omitempty"`
	PickupAt          *time.Time      `json:"pickup_at,omitempty"`
}

// ListParams scopes a paginated listing to a company, optionally by status.
type ListParams struct {
	CompanyID uuid.UUID
	Status    *enums.LoadStatus
	pkgpagination.Params
}

// ListResult is a single page plus the cursor for the next one.
type ListResult struct {
	Items  []LoadDTO `json:"items"`
	Cursor string    `json:"cursor"`
}

type listQuery struct {
	companyID uuid.UUID
	status    *enums.LoadStatus
	limit     int
	cursor    *pkgpagination.Cursor
}

// LoadDTO is the transport shape for a load.
type LoadDTO struct {
	ID                  uuid.UUID        `json:"id"`
	CompanyID           uuid.UUID        `json:"company_id"`
	Reference           string           `json:"reference"`
	Origin              string           `json:"origin"`
	Destination         string           `json:"destination"`
	Status              enums.LoadStatus `json:"status"`
	Rate                decimal.Decimal  `json:"rate"`
	EquipmentRequired   []string         `json:"equipment_required,omitempty"`
	DriverAssociationID *uuid.UUID       `json:"driver_association_id,omitempty"`
	PickupAt            *time.Time       `json:"pickup_at,omitempty"`
	DeliveredAt         *time.Time       `json:"delivered_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func FromModel(l *models.Load) *LoadDTO {
	if l == nil {
		return nil
	}
	return &LoadDTO{
		ID:                  l.ID,
		CompanyID:           l.CompanyID,
		Reference:           l.Reference,
		Origin:              l.Origin,
		Destination:         l.Destination,
		Status:              l.Status,
		Rate:                l.Rate,
		EquipmentRequired:   []string(l.EquipmentRequired),
		DriverAssociationID: l.DriverAssociationID,
		PickupAt:            l.PickupAt,
		DeliveredAt:         l.DeliveredAt,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}
