package expenses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	pkgpagination "github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type expensesRepository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, opts listQuery) ([]models.Expense, error)
	SumByCategory(ctx context.Context, companyID uuid.UUID, from, to *time.Time) ([]categoryTotal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyGateway interface {
	IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
}

// Service exposes expense tracking and reporting operations.
type Service interface {
	Create(ctx context.Context, actorID, companyID uuid.UUID, input CreateExpenseInput) (*ExpenseDTO, error)
	List(ctx context.Context, actorID uuid.UUID, params ListParams) (*ListResult, error)
	Summary(ctx context.Context, actorID, companyID uuid.UUID, from, to *time.Time) (*SummaryDTO, error)
	Delete(ctx context.Context, actorID, expenseID uuid.UUID) error
}

type service struct {
	repo      expensesRepository
	companies companyGateway
	now       func() time.Time
}

func NewService(repo expensesRepository, companies companyGateway) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	if companies == nil {
		return nil, fmt.Errorf("company gateway required")
	}
	return &service{repo: repo, companies: companies, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, actorID, companyID uuid.UUID, input CreateExpenseInput) (*ExpenseDTO, error) {
	if err := s.requireRep(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid expense category")
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	incurredAt := s.now().UTC()
	if input.IncurredAt != nil {
		incurredAt = input.IncurredAt.UTC()
	}

	created, err := s.repo.Create(ctx, &models.Expense{
		CompanyID:   companyID,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		LoadID:      input.LoadID,
		IncurredAt:  incurredAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, actorID uuid.UUID, params ListParams) (*ListResult, error) {
	if err := s.requireRep(ctx, actorID, params.CompanyID); err != nil {
		return nil, err
	}
	cursor, err := pkgpagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pkgpagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, listQuery{
		companyID: params.CompanyID,
		category:  params.Category,
		from:      params.From,
		to:        params.To,
		limit:     pkgpagination.LimitWithBuffer(params.Limit),
		cursor:    cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	items := make([]ExpenseDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

// Summary rolls up per-category totals for a company. The grouping is done
// in SQL so the service never pages through raw rows.
func (s *service) Summary(ctx context.Context, actorID, companyID uuid.UUID, from, to *time.Time) (*SummaryDTO, error) {
	if err := s.requireRep(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	totals, err := s.repo.SumByCategory(ctx, companyID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum expenses")
	}

	summary := &SummaryDTO{
		CompanyID:  companyID,
		Categories: make([]CategoryTotalDTO, 0, len(totals)),
		Total:      decimal.Zero,
	}
	for _, row := range totals {
		summary.Categories = append(summary.Categories, CategoryTotalDTO{Category: row.Category, Total: row.Total})
		summary.Total = summary.Total.Add(row.Total)
	}
	return summary, nil
}

func (s *service) Delete(ctx context.Context, actorID, expenseID uuid.UUID) error {
	expense, err := s.repo.FindByID(ctx, expenseID)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch expense")
	}
	if err := s.requireRep(ctx, actorID, expense.CompanyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, expenseID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expense")
	}
	return nil
}

func (s *service) requireRep(ctx context.Context, userID, companyID uuid.UUID) error {
	ok, err := s.companies.IsAuthorizedRep(ctx, userID, companyID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "authorize company rep")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "caller is not an authorized company representative")
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
