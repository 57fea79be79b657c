package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgpagination "github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

// CreateExpenseInput holds the data for booking a new expense.
type CreateExpenseInput struct {
	Category    enums.ExpenseCategory `json:"category" validate:"required"`
	Amount      decimal.Decimal       `json:"amount"`
	Description *string               `json:"description,omitempty"`
	LoadID      *uuid.UUID            `json:"load_id,omitempty"`
	IncurredAt  *time.Time            `json:"incurred_at,omitempty"`
}

// ListParams scopes a paginated listing to a company, with optional filters.
type ListParams struct {
	CompanyID uuid.UUID
	Category  *enums.ExpenseCategory
	From      *time.Time
	To        *time.Time
	pkgpagination.Params
}

// ListResult is a single page plus the cursor for the next one.
type ListResult struct {
	Items  []ExpenseDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

type listQuery struct {
	companyID uuid.UUID
	category  *enums.ExpenseCategory
	from      *time.Time
	to        *time.Time
	limit     int
	cursor    *pkgpagination.Cursor
}

// ExpenseDTO is the transport shape for an expense.
type ExpenseDTO struct {
	ID          uuid.UUID             `json:"id"`
	CompanyID   uuid.UUID             `json:"company_id"`
	Category    enums.ExpenseCategory `json:"category"`
	Amount      decimal.Decimal       `json:"amount"`
	Description *string               `json:"description,omitempty"`
	LoadID      *uuid.UUID            `json:"load_id,omitempty"`
	IncurredAt  time.Time             `json:"incurred_at"`
	CreatedAt   time.Time             `json:"created_at"`
}

// CategoryTotalDTO is one row of the per-category summary.
type CategoryTotalDTO struct {
	Category enums.ExpenseCategory `json:"category"`
	Total    decimal.Decimal       `json:"total"`
}

// SummaryDTO is the per-category roll-up for a company.
type SummaryDTO struct {
	CompanyID  uuid.UUID          `json:"company_id"`
	Categories []CategoryTotalDTO `json:"categories"`
	Total      decimal.Decimal    `json:"total"`
}

func FromModel(e *models.Expense) *ExpenseDTO {
	if e == nil {
		return nil
	}
	return &ExpenseDTO{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		Category:    e.Category,
		Amount:      e.Amount,
		Description: e.Description,
		LoadID:      e.LoadID,
		IncurredAt:  e.IncurredAt,
		CreatedAt:   e.CreatedAt,
	}
}
