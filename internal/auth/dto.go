package auth

import (
	"github.com/fleetdesk/fleetdesk-backend/internal/companies"
	"github.com/fleetdesk/fleetdesk-backend/internal/users"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens, the user, and the resolved company
// context (nil until the user owns or joins one).
type LoginResponse struct {
	AccessToken  string                       `json:"access_token"`
	RefreshToken string                       `json:"refresh_token"`
	Company      *companies.CompanySummaryDTO `json:"company,omitempty"`
	User         *users.UserDTO               `json:"user"`
}

// RegisterRequest contains the payload required to onboard an owner with
// their company.
type RegisterRequest struct {
	FirstName   string            `json:"first_name" validate:"required"`
	LastName    string            `json:"last_name" validate:"required"`
	Email       string            `json:"email" validate:"required,email"`
	Password    string            `json:"password" validate:"required"`
	Phone       *string           `json:"phone,omitempty"`
	CompanyName string            `json:"company_name" validate:"required"`
	CompanyType enums.CompanyType `json:"company_type" validate:"required"`
	DBAName     *string           `json:"dba_name,omitempty"`
	DOTNumber   *string           `json:"dot_number,omitempty"`
	MCNumber    *string           `json:"mc_number,omitempty"`
	AcceptTOS   bool              `json:"accept_tos"`
}
