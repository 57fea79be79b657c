package companies

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

type stubCompanyRepo struct {
	company    *models.Company
	owned      *models.Company
	associated *models.Company
	members    []MemberDTO
	err        error
	updated    *models.Company
}

func (s *stubCompanyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.company == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.company, nil
}

func (s *stubCompanyRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.owned, nil
}

func (s *stubCompanyRepo) FindActiveAssociationCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.associated, nil
}

func (s *stubCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	if s.err != nil {
		return s.err
	}
	s.updated = company
	return nil
}

func (s *stubCompanyRepo) ListMembers(ctx context.Context, companyID uuid.UUID) ([]MemberDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.members, nil
}

func baseCompany(ownerID uuid.UUID) *models.Company {
	name := "Summit Logistics"
	return &models.Company{
		ID:      uuid.New(),
		Type:    enums.CompanyTypeCarrier,
		Name:    name,
		OwnerID: ownerID,
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	svc, err := NewService(&stubCompanyRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceGetSummary(t *testing.T) {
	owner := uuid.New()
	company := baseCompany(owner)
	svc, err := NewService(&stubCompanyRepo{company: company})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	summary, err := svc.GetSummary(context.Background(), company.ID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	if summary.ID != company.ID || summary.Name != company.Name {
		t.Fatalf("summary mismatch: %+v", summary)
	}
	if summary.Type != enums.CompanyTypeCarrier {
		t.Fatalf("unexpected type %s", summary.Type)
	}
}

func TestServiceUpdateRequiresAuthorizedRep(t *testing.T) {
	owner := uuid.New()
	company := baseCompany(owner)
	svc, err := NewService(&stubCompanyRepo{company: company})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Renamed"
	_, gotErr := svc.Update(context.Background(), uuid.New(), company.ID, UpdateCompanyInput{Name: &name})
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", gotErr)
	}
}

func TestServiceUpdateAppliesFields(t *testing.T) {
	owner := uuid.New()
	company := baseCompany(owner)
	repo := &stubCompanyRepo{company: company}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	name := "Summit Logistics LLC"
	phone := "555-0147"
	states := []string{"CO", "UT"}
	dto, err := svc.Update(context.Background(), owner, company.ID, UpdateCompanyInput{
		Name:            &name,
		Phone:           &phone,
		OperatingStates: &states,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Name != name {
		t.Fatalf("expected name %q, got %q", name, dto.Name)
	}
	if dto.Phone == nil || *dto.Phone != phone {
		t.Fatalf("phone not applied: %v", dto.Phone)
	}
	if len(dto.OperatingStates) != 2 || dto.OperatingStates[0] != "CO" {
		t.Fatalf("operating states not applied: %v", dto.OperatingStates)
	}
	if repo.updated == nil {
		t.Fatal("expected repo update to be called")
	}
}

func TestServiceResolveForUserPrefersOwnedCompany(t *testing.T) {
	owner := uuid.New()
	owned := baseCompany(owner)
	associated := baseCompany(uuid.New())
	svc, err := NewService(&stubCompanyRepo{owned: owned, associated: associated})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.ResolveForUser(context.Background(), owner)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dto.ID != owned.ID {
		t.Fatalf("expected owned company %s, got %s", owned.ID, dto.ID)
	}
}

func TestServiceResolveForUserFallsBackToAssociation(t *testing.T) {
	associated := baseCompany(uuid.New())
	svc, err := NewService(&stubCompanyRepo{associated: associated})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, err := svc.ResolveForUser(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dto.ID != associated.ID {
		t.Fatalf("expected associated company %s, got %s", associated.ID, dto.ID)
	}
}

func TestServiceResolveForUserNoContext(t *testing.T) {
	svc, err := NewService(&stubCompanyRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.ResolveForUser(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}

func TestServiceListMembersDependencyError(t *testing.T) {
	owner := uuid.New()
	company := baseCompany(owner)
	repo := &stubCompanyRepo{company: company}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	repo.members = []MemberDTO{{UserID: uuid.New(), Kind: enums.InviteeKindDriver}}
	members, err := svc.ListMembers(context.Background(), owner, company.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}

	repo.err = errors.New("boom")
	repo.company = company
	if _, err := svc.ListMembers(context.Background(), owner, company.ID); err == nil {
		t.Fatal("expected dependency error")
	}
}
