package invites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// AssocModel constrains the repository to the two association tables. The
// pointer type carries the shared-column accessor and the gorm hooks.
type AssocModel[T any] interface {
	*T
	Assoc() *models.Association
	TableName() string
}

// Repository provides the association persistence shared by dispatcher and
// driver invites. Conditional writes return the affected row count so the
// service layer can tell a won race from a lost one.
type Repository[T any, PT AssocModel[T]] struct {
	db *gorm.DB
}

func NewRepository[T any, PT AssocModel[T]](db *gorm.DB) *Repository[T, PT] {
	return &Repository[T, PT]{db: db}
}

func (r *Repository[T, PT]) Create(ctx context.Context, row PT) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository[T, PT]) CreateTx(tx *gorm.DB, row PT) error {
	return tx.Create(row).Error
}

func (r *Repository[T, PT]) FindByID(ctx context.Context, id uuid.UUID) (PT, error) {
	var row T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return PT(&row), nil
}

// FindByIDTx re-reads a row inside the caller's transaction, used after a
// lost conditional write to decide whether the winner was the same caller.
func (r *Repository[T, PT]) FindByIDTx(tx *gorm.DB, id uuid.UUID) (PT, error) {
	var row T
	err := tx.Where("id = ?", id).First(&row).Error
	if err != nil {
		return nil, err
	}
	return PT(&row), nil
}

// FindByCode looks up a row by its normalized invite code. Redeemed rows
// have the code cleared, so a used code resolves to gorm.ErrRecordNotFound.
func (r *Repository[T, PT]) FindByCode(ctx context.Context, code string) (PT, error) {
	var row T
	err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&row).Error
	if err != nil {
		return nil, err
	}
	return PT(&row), nil
}

// FindLatestByCompanyAndInvitee returns the most recent row binding the user
// to the company, or (nil, nil) when none exists.
func (r *Repository[T, PT]) FindLatestByCompanyAndInvitee(ctx context.Context, companyID, inviteeID uuid.UUID) (PT, error) {
	var row T
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND invitee_id = ?", companyID, inviteeID).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return PT(&row), nil
}

// ClaimInvite binds the caller to a pending unbound row, clearing the code
// and its expiry in the same statement. The predicate guarantees at most one
// concurrent caller succeeds; losers see zero rows affected.
func (r *Repository[T, PT]) ClaimInvite(tx *gorm.DB, id, inviteeID uuid.UUID, joinedAt time.Time) (int64, error) {
	var zero T
	res := tx.Model(&zero).
		Where("id = ? AND status = ? AND invitee_id IS NULL", id, enums.AssociationStatusPending).
		Updates(map[string]any{
			"invitee_id":  inviteeID,
			"status":      enums.AssociationStatusActive,
			"joined_at":   joinedAt,
			"invite_code": nil,
			"expires_at":  nil,
		})
	return res.RowsAffected, res.Error
}

// Reactivate flips a dormant row back to active without issuing a new code.
func (r *Repository[T, PT]) Reactivate(tx *gorm.DB, id uuid.UUID, joinedAt time.Time) (int64, error) {
	var zero T
	res := tx.Model(&zero).
		Where("id = ? AND status IN ?", id, []enums.AssociationStatus{
			enums.AssociationStatusInactive,
			enums.AssociationStatusSuspended,
		}).
		Updates(map[string]any{
			"status":    enums.AssociationStatusActive,
			"joined_at": joinedAt,
		})
	return res.RowsAffected, res.Error
}

// DeletePendingTx removes a pending unbound row. Guarded by the same
// predicate as ClaimInvite so it cannot delete a row someone just claimed.
func (r *Repository[T, PT]) DeletePendingTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var zero T
	res := tx.
		Where("id = ? AND status = ? AND invitee_id IS NULL", id, enums.AssociationStatusPending).
		Delete(&zero)
	return res.RowsAffected, res.Error
}

// UpdateStatusTx moves a bound row between lifecycle states.
func (r *Repository[T, PT]) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from []enums.AssociationStatus, to enums.AssociationStatus) (int64, error) {
	var zero T
	res := tx.Model(&zero).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *Repository[T, PT]) ListActive(ctx context.Context, companyID uuid.UUID) ([]T, error) {
	var rows []T
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND invitee_id IS NOT NULL", companyID, enums.AssociationStatusActive).
		Order("joined_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListUnusedCodes returns pending unbound rows whose codes are still
// redeemable. Expired rows are filtered here rather than deleted; the cron
// sweeper garbage-collects them later. The predicate mirrors
// Association.CodeExpired: a code expires only once now is past expires_at,
// so a row at the exact expiry instant is still listed.
func (r *Repository[T, PT]) ListUnusedCodes(ctx context.Context, companyID uuid.UUID, now time.Time) ([]T, error) {
	var rows []T
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND status = ? AND invitee_id IS NULL AND invite_code IS NOT NULL", companyID, enums.AssociationStatusPending).
		Where("expires_at IS NULL OR expires_at >= ?", now).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// CodeExists reports whether any row in this table currently carries the
// code. Satisfies invitecode.CollisionChecker.
func (r *Repository[T, PT]) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	var zero T
	err := r.db.WithContext(ctx).Model(&zero).
		Where("invite_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// DeleteExpiredPendingBefore hard-deletes pending unbound rows whose codes
// expired before the cutoff. Used by the retention sweeper.
func (r *Repository[T, PT]) DeleteExpiredPendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var zero T
	res := r.db.WithContext(ctx).
		Where("status = ? AND invitee_id IS NULL AND expires_at IS NOT NULL AND expires_at < ?",
			enums.AssociationStatusPending, cutoff).
		Delete(&zero)
	return res.RowsAffected, res.Error
}
