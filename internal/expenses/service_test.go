package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

type stubExpensesRepo struct {
	expenses map[uuid.UUID]*models.Expense
	totals   []categoryTotal
	listRows []models.Expense
}

func newStubExpensesRepo() *stubExpensesRepo {
	return &stubExpensesRepo{expenses: map[uuid.UUID]*models.Expense{}}
}

func (s *stubExpensesRepo) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	s.expenses[expense.ID] = expense
	return expense, nil
}

func (s *stubExpensesRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	expense, ok := s.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return expense, nil
}

func (s *stubExpensesRepo) List(ctx context.Context, opts listQuery) ([]models.Expense, error) {
	if opts.limit < len(s.listRows) {
		return s.listRows[:opts.limit], nil
	}
	return s.listRows, nil
}

func (s *stubExpensesRepo) SumByCategory(ctx context.Context, companyID uuid.UUID, from, to *time.Time) ([]categoryTotal, error) {
	return s.totals, nil
}

func (s *stubExpensesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.expenses, id)
	return nil
}

type stubCompanies struct {
	owners map[uuid.UUID]uuid.UUID
}

func (s *stubCompanies) IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	return s.owners[companyID] == userID, nil
}

type fixture struct {
	svc       Service
	repo      *stubExpensesRepo
	owner     uuid.UUID
	companyID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	companyID := uuid.New()
	repo := newStubExpensesRepo()
	svc, err := NewService(repo, &stubCompanies{owners: map[uuid.UUID]uuid.UUID{companyID: owner}})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, owner: owner, companyID: companyID}
}

func TestCreateExpense(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.owner, f.companyID, CreateExpenseInput{
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.NewFromFloat(412.50),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Category != enums.ExpenseCategoryFuel {
		t.Fatalf("unexpected category %s", dto.Category)
	}
	if dto.IncurredAt.IsZero() {
		t.Fatal("incurred_at must default to now")
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name  string
		input CreateExpenseInput
	}{
		{"unknown category", CreateExpenseInput{Category: "parking", Amount: decimal.NewFromInt(10)}},
		{"zero amount", CreateExpenseInput{Category: enums.ExpenseCategoryTolls, Amount: decimal.Zero}},
		{"negative amount", CreateExpenseInput{Category: enums.ExpenseCategoryTolls, Amount: decimal.NewFromInt(-5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.owner, f.companyID, tc.input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateExpenseRequiresRep(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), uuid.New(), f.companyID, CreateExpenseInput{
		Category: enums.ExpenseCategoryFuel,
		Amount:   decimal.NewFromInt(10),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSummaryAddsGrandTotal(t *testing.T) {
	f := newFixture(t)
	f.repo.totals = []categoryTotal{
		{Category: enums.ExpenseCategoryFuel, Total: decimal.NewFromInt(900)},
		{Category: enums.ExpenseCategoryTolls, Total: decimal.NewFromFloat(42.75)},
	}

	summary, err := f.svc.Summary(context.Background(), f.owner, f.companyID, nil, nil)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(summary.Categories))
	}
	if !summary.Total.Equal(decimal.NewFromFloat(942.75)) {
		t.Fatalf("unexpected grand total %s", summary.Total)
	}
}

func TestDeleteExpense(t *testing.T) {
	f := newFixture(t)
	created, err := f.svc.Create(context.Background(), f.owner, f.companyID, CreateExpenseInput{
		Category: enums.ExpenseCategoryOther,
		Amount:   decimal.NewFromInt(30),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.owner, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = f.svc.Delete(context.Background(), f.owner, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteExpenseForeignCompany(t *testing.T) {
	f := newFixture(t)
	expense := &models.Expense{ID: uuid.New(), CompanyID: uuid.New(), Category: enums.ExpenseCategoryFuel, Amount: decimal.NewFromInt(10)}
	f.repo.expenses[expense.ID] = expense

	err := f.svc.Delete(context.Background(), f.owner, expense.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
