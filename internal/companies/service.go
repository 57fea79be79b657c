package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
)

type companyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Company, error)
	FindActiveAssociationCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	ListMembers(ctx context.Context, companyID uuid.UUID) ([]MemberDTO, error)
}

// Service exposes company profile and resolution operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*CompanyDTO, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*CompanySummaryDTO, error)
	Update(ctx context.Context, userID, companyID uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error)
	ListMembers(ctx context.Context, userID, companyID uuid.UUID) ([]MemberDTO, error)
	ResolveForUser(ctx context.Context, userID uuid.UUID) (*CompanyDTO, error)
	IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
}

type service struct {
	repo companyRepository
}

// NewService builds a company service with the provided repository.
func NewService(repo companyRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return FromModel(company), nil
}

func (s *service) GetSummary(ctx context.Context, id uuid.UUID) (*CompanySummaryDTO, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return SummaryFromModel(company), nil
}

func (s *service) Update(ctx context.Context, userID, companyID uuid.UUID, input UpdateCompanyInput) (*CompanyDTO, error) {
	authorized, err := s.IsAuthorizedRep(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not an authorized company representative")
	}

	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}

	applyUpdate(company, input)

	if err := s.repo.Update(ctx, company); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update company")
	}
	return FromModel(company), nil
}

func (s *service) ListMembers(ctx context.Context, userID, companyID uuid.UUID) ([]MemberDTO, error) {
	authorized, err := s.IsAuthorizedRep(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not an authorized company representative")
	}

	members, err := s.repo.ListMembers(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list company members")
	}
	return members, nil
}

// ResolveForUser determines which company context applies to a user: the
// company they own first, otherwise the company of their active association.
func (s *service) ResolveForUser(ctx context.Context, userID uuid.UUID) (*CompanyDTO, error) {
	owned, err := s.repo.FindByOwner(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve owned company")
	}
	if owned != nil {
		return FromModel(owned), nil
	}

	associated, err := s.repo.FindActiveAssociationCompany(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve associated company")
	}
	if associated != nil {
		return FromModel(associated), nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no company context for user")
}

// IsAuthorizedRep reports whether the user may act for the company. Only the
// owner qualifies today.
func (s *service) IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error) {
	company, err := s.repo.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load company")
	}
	return company.OwnerID == userID, nil
}

func applyUpdate(company *models.Company, input UpdateCompanyInput) {
	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.DBAName != nil {
		company.DBAName = input.DBAName
	}
	if input.DOTNumber != nil {
		company.DOTNumber = input.DOTNumber
	}
	if input.MCNumber != nil {
		company.MCNumber = input.MCNumber
	}
	if input.Phone != nil {
		company.Phone = input.Phone
	}
	if input.Email != nil {
		company.Email = input.Email
	}
	if input.OperatingStates != nil {
		company.OperatingStates = pq.StringArray(*input.OperatingStates)
	}
}

