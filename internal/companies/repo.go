package companies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// Repository handles company persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to company operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new company row.
func (r *Repository) Create(ctx context.Context, dto CreateCompanyDTO) (*models.Company, error) {
	company := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// CreateWithTx persists a new company inside the provided transaction.
func (r *Repository) CreateWithTx(tx *gorm.DB, dto CreateCompanyDTO) (*models.Company, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	company := dto.ToModel()
	if err := tx.Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// FindByID loads a company by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByOwner returns the company owned by the provided user, nil if none.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

// Update saves the provided company.
func (r *Repository) Update(ctx context.Context, company *models.Company) error {
	if company == nil {
		return fmt.Errorf("company is required")
	}
	return r.db.WithContext(ctx).Save(company).Error
}

// ListMembers returns the company's active dispatchers and drivers joined
// with user metadata.
func (r *Repository) ListMembers(ctx context.Context, companyID uuid.UUID) ([]MemberDTO, error) {
	dispatchers, err := r.listMembersFrom(ctx, &models.DispatcherAssociation{}, companyID, enums.InviteeKindDispatcher)
	if err != nil {
		return nil, err
	}
	drivers, err := r.listMembersFrom(ctx, &models.DriverAssociation{}, companyID, enums.InviteeKindDriver)
	if err != nil {
		return nil, err
	}
	return append(dispatchers, drivers...), nil
}

func (r *Repository) listMembersFrom(ctx context.Context, model interface{ TableName() string }, companyID uuid.UUID, kind enums.InviteeKind) ([]MemberDTO, error) {
	table := model.TableName()

	var out []MemberDTO
	err := r.db.WithContext(ctx).
		Table(table).
		Select(table+".id AS association_id, "+table+".company_id, "+table+".invitee_id AS user_id, "+table+".status, "+table+".joined_at, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = "+table+".invitee_id").
		Where(table+".company_id = ? AND "+table+".status = ? AND "+table+".invitee_id IS NOT NULL", companyID, enums.AssociationStatusActive).
		Order(table + ".joined_at").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Kind = kind
	}
	return out, nil
}

// FindActiveAssociationCompany returns the company a user is actively
// associated with, checking dispatcher rows first, then driver rows. Returns
// nil when the user has no active association.
func (r *Repository) FindActiveAssociationCompany(ctx context.Context, userID uuid.UUID) (*models.Company, error) {
	for _, table := range []string{
		models.DispatcherAssociation{}.TableName(),
		models.DriverAssociation{}.TableName(),
	} {
		var company models.Company
		err := r.db.WithContext(ctx).
			Table("companies").
			Select("companies.*").
			Joins("JOIN "+table+" ON "+table+".company_id = companies.id").
			Where(table+".invitee_id = ? AND "+table+".status = ?", userID, enums.AssociationStatusActive).
			First(&company).Error
		if err == nil {
			return &company, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}
