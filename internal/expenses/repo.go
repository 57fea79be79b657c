package expenses

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Repository exposes expense persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// List returns company-scoped expenses using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{}).Where("company_id = ?", opts.companyID)

	if opts.category != nil {
		query = query.Where("category = ?", *opts.category)
	}
	if opts.from != nil {
		query = query.Where("incurred_at >= ?", *opts.from)
	}
	if opts.to != nil {
		query = query.Where("incurred_at < ?", *opts.to)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Expense
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type categoryTotal struct {
	Category enums.ExpenseCategory `gorm:"column:category"`
	Total    decimal.Decimal       `gorm:"column:total"`
}

// SumByCategory aggregates expense totals per category in SQL.
func (r *Repository) SumByCategory(ctx context.Context, companyID uuid.UUID, from, to *time.Time) ([]categoryTotal, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{}).
		Select("category, SUM(amount) AS total").
		Where("company_id = ?", companyID).
		Group("category")

	if from != nil {
		query = query.Where("incurred_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("incurred_at < ?", *to)
	}

	var rows []categoryTotal
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Expense{}, "id = ?", id).Error
}
