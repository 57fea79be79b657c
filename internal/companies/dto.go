package companies

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// CompanyDTO is the transport shape for a company profile.
type CompanyDTO struct {
	ID              uuid.UUID         `json:"id"`
	Type            enums.CompanyType `json:"type"`
	Name            string            `json:"name"`
	DBAName         *string           `json:"dba_name,omitempty"`
	DOTNumber       *string           `json:"dot_number,omitempty"`
	MCNumber        *string           `json:"mc_number,omitempty"`
	Phone           *string           `json:"phone,omitempty"`
	Email           *string           `json:"email,omitempty"`
	OperatingStates []string          `json:"operating_states"`
	OwnerID         uuid.UUID         `json:"owner_id"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CompanySummaryDTO is the minimal shape surfaced to invitees previewing a code.
type CompanySummaryDTO struct {
	ID   uuid.UUID         `json:"id"`
	Type enums.CompanyType `json:"type"`
	Name string            `json:"name"`
}

// CreateCompanyDTO holds the data needed to persist a new company.
type CreateCompanyDTO struct {
	Type            enums.CompanyType
	Name            string
	DBAName         *string
	DOTNumber       *string
	MCNumber        *string
	Phone           *string
	Email           *string
	OperatingStates []string
	OwnerID         uuid.UUID
}

// UpdateCompanyInput captures the fields an owner may change.
type UpdateCompanyInput struct {
	Name            *string
	DBAName         *string
	DOTNumber       *string
	MCNumber        *string
	Phone           *string
	Email           *string
	OperatingStates *[]string
}

// MemberDTO mixes association metadata with the member's user profile.
type MemberDTO struct {
	AssociationID uuid.UUID               `json:"association_id"`
	CompanyID     uuid.UUID               `json:"company_id"`
	UserID        uuid.UUID               `json:"user_id"`
	Kind          enums.InviteeKind       `json:"kind"`
	Email         string                  `json:"email"`
	FirstName     string                  `json:"first_name"`
	LastName      string                  `json:"last_name"`
	Status        enums.AssociationStatus `json:"status"`
	JoinedAt      *time.Time              `json:"joined_at,omitempty"`
	LastLoginAt   *time.Time              `json:"last_login_at,omitempty"`
}

func FromModel(c *models.Company) *CompanyDTO {
	if c == nil {
		return nil
	}
	return &CompanyDTO{
		ID:              c.ID,
		Type:            c.Type,
		Name:            c.Name,
		DBAName:         c.DBAName,
		DOTNumber:       c.DOTNumber,
		MCNumber:        c.MCNumber,
		Phone:           c.Phone,
		Email:           c.Email,
		OperatingStates: append([]string(nil), c.OperatingStates...),
		OwnerID:         c.OwnerID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// SummaryFromModel trims a company down to what an invitee may see.
func SummaryFromModel(c *models.Company) *CompanySummaryDTO {
	if c == nil {
		return nil
	}
	return &CompanySummaryDTO{
		ID:   c.ID,
		Type: c.Type,
		Name: c.Name,
	}
}

func (d CreateCompanyDTO) ToModel() *models.Company {
	return &models.Company{
		Type:            d.Type,
		Name:            d.Name,
		DBAName:         d.DBAName,
		DOTNumber:       d.DOTNumber,
		MCNumber:        d.MCNumber,
		Phone:           d.Phone,
		Email:           d.Email,
		OperatingStates: pq.StringArray(d.OperatingStates),
		OwnerID:         d.OwnerID,
	}
}
