package invites

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

type feeStore interface {
	UpdateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (int64, error)
}

// FeeRepository updates the dispatcher fee column. Kept separate from the
// generic repository because the column only exists on one table.
type FeeRepository struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

func (r *FeeRepository) UpdateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.DispatcherAssociation{}).
		Where("id = ?", id).
		Update("fee_percentage", fee)
	return res.RowsAffected, res.Error
}

// DispatcherService is the dispatcher variant: the shared lifecycle plus the
// fee percentage attached at issue time and adjustable afterwards.
type DispatcherService struct {
	*Service[models.DispatcherAssociation, *models.DispatcherAssociation]
	fees feeStore
}

func NewDispatcherService(deps Deps[models.DispatcherAssociation, *models.DispatcherAssociation], fees feeStore) (*DispatcherService, error) {
	base, err := newService(deps, enums.InviteeKindDispatcher, enums.AggregateDispatcherAssociation, buildDispatcherRow, dispatcherFee)
	if err != nil {
		return nil, err
	}
	return &DispatcherService{Service: base, fees: fees}, nil
}

func buildDispatcherRow(assoc models.Association, input GenerateCodeInput) *models.DispatcherAssociation {
	row := &models.DispatcherAssociation{Association: assoc}
	if input.FeePercentage != nil {
		row.FeePercentage = *input.FeePercentage
	}
	return row
}

// UpdateFee changes the fee in place without touching the association
// status.
func (s *DispatcherService) UpdateFee(ctx context.Context, actorID, associationID uuid.UUID, fee decimal.Decimal) error {
	if err := validateFee(fee); err != nil {
		return err
	}
	if _, err := s.loadForRep(ctx, actorID, associationID); err != nil {
		return err
	}
	affected, err := s.fees.UpdateFee(ctx, associationID, fee)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fee percentage")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "association not found")
	}
	return nil
}
