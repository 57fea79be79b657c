package loads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Repository exposes load persistence operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, load *models.Load) (*models.Load, error) {
	if err := r.db.WithContext(ctx).Create(load).Error; err != nil {
		return nil, err
	}
	return load, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	var load models.Load
	if err := r.db.WithContext(ctx).First(&load, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &load, nil
}

// List returns company-scoped loads using cursor pagination, newest first.
func (r *Repository) List(ctx context.Context, opts listQuery) ([]models.Load, error) {
	query := r.db.WithContext(ctx).Model(&models.Load{}).Where("company_id = ?", opts.companyID)

	if opts.status != nil {
		query = query.Where("status = ?", *opts.status)
	}
	if opts.cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", opts.cursor.CreatedAt, opts.cursor.CreatedAt, opts.cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.limit)

	var rows []models.Load
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, load *models.Load) error {
	return r.db.WithContext(ctx).Save(load).Error
}

// AssignDriverTx binds a driver association to an open load. Predicate-guarded
// so a load cannot be double-assigned by racing requests.
func (r *Repository) AssignDriverTx(tx *gorm.DB, loadID, driverAssociationID uuid.UUID) (int64, error) {
	res := tx.Model(&models.Load{}).
		Where("id = ? AND status = ? AND driver_association_id IS NULL", loadID, enums.LoadStatusOpen).
		Updates(map[string]any{
			"driver_association_id": driverAssociationID,
			"status":                enums.LoadStatusAssigned,
		})
	return res.RowsAffected, res.Error
}

// UnassignDriverTx releases the driver from an assigned load and reopens it.
// Only assigned loads still carrying a driver match, so a load that already
// moved to in_transit cannot lose its driver.
func (r *Repository) UnassignDriverTx(tx *gorm.DB, loadID uuid.UUID) (int64, error) {
	res := tx.Model(&models.Load{}).
		Where("id = ? AND status = ? AND driver_association_id IS NOT NULL", loadID, enums.LoadStatusAssigned).
		Updates(map[string]any{
			"driver_association_id": nil,
			"status":                enums.LoadStatusOpen,
		})
	return res.RowsAffected, res.Error
}

// UpdateStatusTx moves a load between statuses, matching only the expected
// current status.
func (r *Repository) UpdateStatusTx(tx *gorm.DB, loadID uuid.UUID, from, to enums.LoadStatus) (int64, error) {
	updates := map[string]any{"status": to}
	res := tx.Model(&models.Load{}).
		Where("id = ? AND status = ?", loadID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *Repository) SetDeliveredAtTx(tx *gorm.DB, loadID uuid.UUID, at time.Time) error {
	return tx.Model(&models.Load{}).
		Where("id = ?", loadID).
		UpdateColumn("delivered_at", at).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Load{}, "id = ?", id).Error
}
