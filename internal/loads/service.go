package loads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox/payloads"
	pkgpagination "github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
	"github.com/lib/pq"
)

type loadsRepository interface {
	Create(ctx context.Context, load *models.Load) (*models.Load, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error)
	List(ctx context.Context, opts listQuery) ([]models.Load, error)
	AssignDriverTx(tx *gorm.DB, loadID, driverAssociationID uuid.UUID) (int64, error)
	UnassignDriverTx(tx *gorm.DB, loadID uuid.UUID) (int64, error)
	UpdateStatusTx(tx *gorm.DB, loadID uuid.UUID, from, to enums.LoadStatus) (int64, error)
	SetDeliveredAtTx(tx *gorm.DB, loadID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type driverAssociations interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.DriverAssociation, error)
}

type companyGateway interface {
	IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the load booking and dispatch operations.
type Service interface {
	Create(ctx context.Context, actorID, companyID uuid.UUID, input CreateLoadInput) (*LoadDTO, error)
	Get(ctx context.Context, actorID, loadID uuid.UUID) (*LoadDTO, error)
	List(ctx context.Context, actorID uuid.UUID, params ListParams) (*ListResult, error)
	AssignDriver(ctx context.Context, actorID, loadID, driverAssociationID uuid.UUID) (*LoadDTO, error)
	UnassignDriver(ctx context.Context, actorID, loadID uuid.UUID) (*LoadDTO, error)
	UpdateStatus(ctx context.Context, actorID, loadID uuid.UUID, to enums.LoadStatus) (*LoadDTO, error)
	Delete(ctx context.Context, actorID, loadID uuid.UUID) error
}

type service struct {
	repo      loadsRepository
	drivers   driverAssociations
	companies companyGateway
	events    eventEmitter
	tx        txRunner
	now       func() time.Time
}

// ServiceParams bundles the load service dependencies.
type ServiceParams struct {
	Repo      loadsRepository
	Drivers   driverAssociations
	Companies companyGateway
	Events    eventEmitter
	Tx        txRunner
	Clock     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("loads repository required")
	}
	if params.Drivers == nil {
		return nil, fmt.Errorf("driver association store required")
	}
	if params.Companies == nil {
		return nil, fmt.Errorf("company gateway required")
	}
	if params.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &service{
		repo:      params.Repo,
		drivers:   params.Drivers,
		companies: params.Companies,
		events:    params.Events,
		tx:        params.Tx,
		now:       clock,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID, companyID uuid.UUID, input CreateLoadInput) (*LoadDTO, error) {
	if err := s.requireRep(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Reference) == "" || strings.TrimSpace(input.Origin) == "" || strings.TrimSpace(input.Destination) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference, origin, and destination are required")
	}
	if input.Rate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate cannot be negative")
	}

	load := &models.Load{
		CompanyID:         companyID,
		Reference:         strings.TrimSpace(input.Reference),
		Origin:            strings.TrimSpace(input.Origin),
		Destination:       strings.TrimSpace(input.Destination),
		Status:            enums.LoadStatusOpen,
		Rate:              input.Rate,
		EquipmentRequired: pq.StringArray(input.EquipmentRequired),
		PickupAt:          input.PickupAt,
	}
	created, err := s.repo.Create(ctx, load)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create load")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, actorID, loadID uuid.UUID) (*LoadDTO, error) {
	load, err := s.loadForRep(ctx, actorID, loadID)
	if err != nil {
		return nil, err
	}
	return FromModel(load), nil
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
		status:    params.Status,
		limit:     pkgpagination.LimitWithBuffer(params.Limit),
		cursor:    cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list loads")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	items := make([]LoadDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

// AssignDriver binds an active driver association of the same company to an
// open load. The write is predicate-guarded so racing dispatchers cannot
// both assign the load.
func (s *service) AssignDriver(ctx context.Context, actorID, loadID, driverAssociationID uuid.UUID) (*LoadDTO, error) {
	load, err := s.loadForRep(ctx, actorID, loadID)
	if err != nil {
		return nil, err
	}

	assoc, err := s.drivers.FindByID(ctx, driverAssociationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver association not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver association")
	}
	if assoc.CompanyID != load.CompanyID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driver association belongs to another company")
	}
	if assoc.Status != enums.AssociationStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "driver association is not active")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.AssignDriverTx(tx, loadID, driverAssociationID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load is not open for assignment")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLoadAssigned,
			AggregateType: enums.AggregateLoad,
			AggregateID:   loadID,
			Actor:         actorRef(actorID, load.CompanyID),
			Data: payloads.LoadAssignedEvent{
				LoadID:              loadID,
				CompanyID:           load.CompanyID,
				DriverAssociationID: driverAssociationID,
				Rate:                load.Rate,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, passthrough(err, "assign driver")
	}

	updated, err := s.repo.FindByID(ctx, loadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload load")
	}
	return FromModel(updated), nil
}

// UnassignDriver releases the driver from an assigned load and reopens it
// for dispatch. The write matches only assigned loads, so a load already in
// transit keeps its driver.
func (s *service) UnassignDriver(ctx context.Context, actorID, loadID uuid.UUID) (*LoadDTO, error) {
	load, err := s.loadForRep(ctx, actorID, loadID)
	if err != nil {
		return nil, err
	}
	if load.DriverAssociationID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "load has no driver assigned")
	}
	released := *load.DriverAssociationID

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.UnassignDriverTx(tx, loadID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load is not open for unassignment")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLoadUnassigned,
			AggregateType: enums.AggregateLoad,
			AggregateID:   loadID,
			Actor:         actorRef(actorID, load.CompanyID),
			Data: payloads.LoadUnassignedEvent{
				LoadID:              loadID,
				CompanyID:           load.CompanyID,
				DriverAssociationID: released,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, passthrough(err, "unassign driver")
	}

	updated, err := s.repo.FindByID(ctx, loadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload load")
	}
	return FromModel(updated), nil
}

var allowedTransitions = map[enums.LoadStatus][]enums.LoadStatus{
	enums.LoadStatusOpen:      {enums.LoadStatusCancelled},
	enums.LoadStatusAssigned:  {enums.LoadStatusInTransit, enums.LoadStatusCancelled},
	enums.LoadStatusInTransit: {enums.LoadStatusDelivered, enums.LoadStatusCancelled},
}

func transitionAllowed(from, to enums.LoadStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func (s *service) UpdateStatus(ctx context.Context, actorID, loadID uuid.UUID, to enums.LoadStatus) (*LoadDTO, error) {
	if !to.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid load status")
	}
	load, err := s.loadForRep(ctx, actorID, loadID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(load.Status, to) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move load from %s to %s", load.Status, to))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateStatusTx(tx, loadID, load.Status, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "load status changed concurrently")
		}
		if to == enums.LoadStatusDelivered {
			if err := s.repo.SetDeliveredAtTx(tx, loadID, s.now()); err != nil {
				return err
			}
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLoadStatusChanged,
			AggregateType: enums.AggregateLoad,
			AggregateID:   loadID,
			Actor:         actorRef(actorID, load.CompanyID),
			Data: payloads.LoadStatusChangedEvent{
				LoadID:    loadID,
				CompanyID: load.CompanyID,
				Status:    to,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, passthrough(err, "update load status")
	}

	updated, err := s.repo.FindByID(ctx, loadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload load")
	}
	return FromModel(updated), nil
}

// Delete removes a load that never left the open state.
func (s *service) Delete(ctx context.Context, actorID, loadID uuid.UUID) error {
	load, err := s.loadForRep(ctx, actorID, loadID)
	if err != nil {
		return err
	}
	if load.Status != enums.LoadStatusOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "only open loads can be deleted")
	}
	if err := s.repo.Delete(ctx, loadID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete load")
	}
	return nil
}

func (s *service) loadForRep(ctx context.Context, actorID, loadID uuid.UUID) (*models.Load, error) {
	load, err := s.repo.FindByID(ctx, loadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "load not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch load")
	}
	if err := s.requireRep(ctx, actorID, load.CompanyID); err != nil {
		return nil, err
	}
	return load, nil
}

func (s *service) requireRep(ctx context.Context, actorID, companyID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	authorized, err := s.companies.IsAuthorizedRep(ctx, actorID, companyID)
	if err != nil {
		return err
	}
	if !authorized {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not an authorized company representative")
	}
	return nil
}

func actorRef(userID, companyID uuid.UUID) *outbox.ActorRef {
	company := companyID
	return &outbox.ActorRef{UserID: userID, CompanyID: &company}
}

func passthrough(err error, msg string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
