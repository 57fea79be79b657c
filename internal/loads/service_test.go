package loads

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
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
	pkgpagination "github.com/fleetdesk/fleetdesk-backend/pkg/pagination"
)

type stubLoadsRepo struct {
	loads        map[uuid.UUID]*models.Load
	listRows     []models.Load
	assignMisses bool
}

func newStubLoadsRepo() *stubLoadsRepo {
	return &stubLoadsRepo{loads: map[uuid.UUID]*models.Load{}}
}

func (s *stubLoadsRepo) Create(ctx context.Context, load *models.Load) (*models.Load, error) {
	if load.ID == uuid.Nil {
		load.ID = uuid.New()
	}
	load.CreatedAt = time.Now()
	s.loads[load.ID] = load
	return load, nil
}

func (s *stubLoadsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Load, error) {
	load, ok := s.loads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *load
	return &copied, nil
}

func (s *stubLoadsRepo) List(ctx context.Context, opts listQuery) ([]models.Load, error) {
	if opts.limit < len(s.listRows) {
		return s.listRows[:opts.limit], nil
	}
	return s.listRows, nil
}

func (s *stubLoadsRepo) AssignDriverTx(tx *gorm.DB, loadID, driverAssociationID uuid.UUID) (int64, error) {
	if s.assignMisses {
		return 0, nil
	}
	load, ok := s.loads[loadID]
	if !ok || load.Status != enums.LoadStatusOpen || load.DriverAssociationID != nil {
		return 0, nil
	}
	id := driverAssociationID
	load.DriverAssociationID = &id
	load.Status = enums.LoadStatusAssigned
	return 1, nil
}

func (s *stubLoadsRepo) UnassignDriverTx(tx *gorm.DB, loadID uuid.UUID) (int64, error) {
	load, ok := s.loads[loadID]
	if !ok || load.Status != enums.LoadStatusAssigned || load.DriverAssociationID == nil {
		return 0, nil
	}
	load.DriverAssociationID = nil
	load.Status = enums.LoadStatusOpen
	return 1, nil
}

func (s *stubLoadsRepo) UpdateStatusTx(tx *gorm.DB, loadID uuid.UUID, from, to enums.LoadStatus) (int64, error) {
	load, ok := s.loads[loadID]
	if !ok || load.Status != from {
		return 0, nil
	}
	load.Status = to
	return 1, nil
}

func (s *stubLoadsRepo) SetDeliveredAtTx(tx *gorm.DB, loadID uuid.UUID, at time.Time) error {
	if load, ok := s.loads[loadID]; ok {
		load.DeliveredAt = &at
	}
	return nil
}

func (s *stubLoadsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.loads, id)
	return nil
}

type stubDrivers struct {
	assoc *models.DriverAssociation
}

func (s *stubDrivers) FindByID(ctx context.Context, id uuid.UUID) (*models.DriverAssociation, error) {
	if s.assoc == nil || s.assoc.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.assoc, nil
}

type stubCompanies struct {
	owners map[uuid.UUID]uuid.UUID
}

func (s *stubCompanies) IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	return s.owners[companyID] == userID, nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc       Service
	repo      *stubLoadsRepo
	drivers   *stubDrivers
	emitter   *stubEmitter
	owner     uuid.UUID
	companyID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	owner := uuid.New()
	companyID := uuid.New()
	repo := newStubLoadsRepo()
	drivers := &stubDrivers{}
	emitter := &stubEmitter{}
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		Drivers:   drivers,
		Companies: &stubCompanies{owners: map[uuid.UUID]uuid.UUID{companyID: owner}},
		Events:    emitter,
		Tx:        passthroughTx{},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, drivers: drivers, emitter: emitter, owner: owner, companyID: companyID}
}

func (f *fixture) seedLoad(t *testing.T, status enums.LoadStatus) *models.Load {
	t.Helper()
	load := &models.Load{
		ID:          uuid.New(),
		CompanyID:   f.companyID,
		Reference:   "FD-1001",
		Origin:      "Denver, CO",
		Destination: "Salt Lake City, UT",
		Status:      status,
		Rate:        decimal.NewFromInt(2200),
	}
	f.repo.loads[load.ID] = load
	return load
}

func (f *fixture) seedActiveDriver() *models.DriverAssociation {
	invitee := uuid.New()
	assoc := &models.DriverAssociation{Association: models.Association{
		ID:        uuid.New(),
		CompanyID: f.companyID,
		InviteeID: &invitee,
		Status:    enums.AssociationStatusActive,
		InvitedBy: f.owner,
	}}
	f.drivers.assoc = assoc
	return assoc
}

func TestCreateLoad(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.Create(context.Background(), f.owner, f.companyID, CreateLoadInput{
		Reference:   "FD-1001",
		Origin:      "Denver, CO",
		Destination: "Salt Lake City, UT",
		Rate:        decimal.NewFromInt(2200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.LoadStatusOpen {
		t.Fatalf("expected open, got %s", dto.Status)
	}

	_, err = f.svc.Create(context.Background(), f.owner, f.companyID, CreateLoadInput{
		Reference: "FD-1002", Origin: "", Destination: "X",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), uuid.New(), f.companyID, CreateLoadInput{
		Reference: "FD-1003", Origin: "A", Destination: "B",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignDriver(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusOpen)
	assoc := f.seedActiveDriver()

	dto, err := f.svc.AssignDriver(context.Background(), f.owner, load.ID, assoc.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if dto.Status != enums.LoadStatusAssigned {
		t.Fatalf("expected assigned, got %s", dto.Status)
	}
	if dto.DriverAssociationID == nil || *dto.DriverAssociationID != assoc.ID {
		t.Fatalf("driver not bound: %v", dto.DriverAssociationID)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventLoadAssigned {
		t.Fatalf("expected load_assigned event, got %+v", f.emitter.events)
	}
}

func TestAssignDriverRejectsInactiveAssociation(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusOpen)
	assoc := f.seedActiveDriver()
	assoc.Status = enums.AssociationStatusInactive

	_, err := f.svc.AssignDriver(context.Background(), f.owner, load.ID, assoc.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestAssignDriverRejectsForeignAssociation(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusOpen)
	assoc := f.seedActiveDriver()
	assoc.CompanyID = uuid.New()

	_, err := f.svc.AssignDriver(context.Background(), f.owner, load.ID, assoc.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssignDriverLostRace(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusOpen)
	assoc := f.seedActiveDriver()
	f.repo.assignMisses = true

	_, err := f.svc.AssignDriver(context.Background(), f.owner, load.ID, assoc.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(f.emitter.events) != 0 {
		t.Fatalf("lost race must not emit events, got %d", len(f.emitter.events))
	}
}

func TestUnassignDriverReopensLoad(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusAssigned)
	assocID := uuid.New()
	load.DriverAssociationID = &assocID

	dto, err := f.svc.UnassignDriver(context.Background(), f.owner, load.ID)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if dto.Status != enums.LoadStatusOpen {
		t.Fatalf("expected open, got %s", dto.Status)
	}
	if dto.DriverAssociationID != nil {
		t.Fatalf("driver still bound: %v", dto.DriverAssociationID)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventLoadUnassigned {
		t.Fatalf("expected load_unassigned event, got %+v", f.emitter.events)
	}
}

func TestUnassignDriverRejectsUnassignedLoad(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusOpen)

	_, err := f.svc.UnassignDriver(context.Background(), f.owner, load.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(f.emitter.events) != 0 {
		t.Fatalf("no event expected, got %d", len(f.emitter.events))
	}
}

func TestUnassignDriverRejectsInTransitLoad(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusInTransit)
	assocID := uuid.New()
	load.DriverAssociationID = &assocID

	_, err := f.svc.UnassignDriver(context.Background(), f.owner, load.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	load := f.seedLoad(t, enums.LoadStatusAssigned)

	dto, err := f.svc.UpdateStatus(context.Background(), f.owner, load.ID, enums.LoadStatusInTransit)
	if err != nil {
		t.Fatalf("to in_transit: %v", err)
	}
	if dto.Status != enums.LoadStatusInTransit {
		t.Fatalf("expected in_transit, got %s", dto.Status)
	}

	dto, err = f.svc.UpdateStatus(context.Background(), f.owner, load.ID, enums.LoadStatusDelivered)
	if err != nil {
		t.Fatalf("to delivered: %v", err)
	}
	if dto.DeliveredAt == nil {
		t.Fatal("delivered_at must be stamped")
	}

	_, err = f.svc.UpdateStatus(context.Background(), f.owner, load.ID, enums.LoadStatusOpen)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	if len(f.emitter.events) != 2 {
		t.Fatalf("expected 2 status events, got %d", len(f.emitter.events))
	}
}

func TestDeleteOnlyOpenLoads(t *testing.T) {
	f := newFixture(t)
	open := f.seedLoad(t, enums.LoadStatusOpen)
	assigned := f.seedLoad(t, enums.LoadStatusAssigned)

	if err := f.svc.Delete(context.Background(), f.owner, open.ID); err != nil {
		t.Fatalf("delete open: %v", err)
	}
	err := f.svc.Delete(context.Background(), f.owner, assigned.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.repo.listRows = append(f.repo.listRows, models.Load{
			ID:        uuid.New(),
			CompanyID: f.companyID,
			Reference: "FD-200",
			Status:    enums.LoadStatusOpen,
			Rate:      decimal.NewFromInt(1000),
			CreatedAt: base.Add(time.Duration(-i) * time.Hour),
		})
	}

	result, err := f.svc.List(context.Background(), f.owner, ListParams{
		CompanyID: f.companyID,
		Params:    pkgpagination.Params{Limit: 2},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected next-page cursor")
	}

	cursor, err := pkgpagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.ID != result.Items[1].ID {
		t.Fatalf("cursor must point at the last returned row")
	}

	_, err = f.svc.List(context.Background(), f.owner, ListParams{
		CompanyID: f.companyID,
		Params:    pkgpagination.Params{Cursor: "not-base64!"},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
