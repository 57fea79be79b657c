package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/internal/companies"
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	pkgerrors "github.com/fleetdesk/fleetdesk-backend/pkg/errors"
	"github.com/fleetdesk/fleetdesk-backend/pkg/invitecode"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/outbox"
)

type associationStore[T any, PT AssocModel[T]] interface {
	CreateTx(tx *gorm.DB, row PT) error
	FindByID(ctx context.Context, id uuid.UUID) (PT, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (PT, error)
	FindByCode(ctx context.Context, code string) (PT, error)
	FindLatestByCompanyAndInvitee(ctx context.Context, companyID, inviteeID uuid.UUID) (PT, error)
	ClaimInvite(tx *gorm.DB, id, inviteeID uuid.UUID, joinedAt time.Time) (int64, error)
	Reactivate(tx *gorm.DB, id uuid.UUID, joinedAt time.Time) (int64, error)
	DeletePendingTx(tx *gorm.DB, id uuid.UUID) (int64, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from []enums.AssociationStatus, to enums.AssociationStatus) (int64, error)
	ListActive(ctx context.Context, companyID uuid.UUID) ([]T, error)
	ListUnusedCodes(ctx context.Context, companyID uuid.UUID, now time.Time) ([]T, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

type companyGateway interface {
	IsAuthorizedRep(ctx context.Context, userID, companyID uuid.UUID) (bool, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*companies.CompanySummaryDTO, error)
}

type userDirectory interface {
	SetCurrentCompanyIfEmpty(ctx context.Context, id, companyID uuid.UUID) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Config carries the invite tunables from the environment.
type Config struct {
	CodeLength         int
	MaxGenerateRetries int
	DefaultExpiryDays  int
}

// Deps bundles the collaborators for a Service. PeerCodes is the other
// association table's collision check, so a dispatcher code can never equal
// a live driver code.
type Deps[T any, PT AssocModel[T]] struct {
	Store     associationStore[T, PT]
	PeerCodes invitecode.CollisionChecker
	Companies companyGateway
	Users     userDirectory
	Events    eventEmitter
	Tx        txRunner
	Logger    *logger.Logger
	Config    Config
	Clock     func() time.Time
}

// Service implements the invite-gated membership lifecycle, parametrized
// over the two association variants.
type Service[T any, PT AssocModel[T]] struct {
	store     associationStore[T, PT]
	peerCodes invitecode.CollisionChecker
	companies companyGateway
	users     userDirectory
	events    eventEmitter
	tx        txRunner
	logg      *logger.Logger
	cfg       Config
	kind      enums.InviteeKind
	aggregate enums.OutboxAggregateType
	build     func(assoc models.Association, input GenerateCodeInput) PT
	fee       feeExtractor[PT]
	now       func() time.Time
}

func newService[T any, PT AssocModel[T]](
	deps Deps[T, PT],
	kind enums.InviteeKind,
	aggregate enums.OutboxAggregateType,
	build func(assoc models.Association, input GenerateCodeInput) PT,
	fee feeExtractor[PT],
) (*Service[T, PT], error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("association store required")
	}
	if deps.Companies == nil {
		return nil, fmt.Errorf("company gateway required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if deps.Events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	cfg := deps.Config
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = invitecode.DefaultLength
	}
	if cfg.MaxGenerateRetries <= 0 {
		cfg.MaxGenerateRetries = invitecode.DefaultMaxRetries
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service[T, PT]{
		store:     deps.Store,
		peerCodes: deps.PeerCodes,
		companies: deps.Companies,
		users:     deps.Users,
		events:    deps.Events,
		tx:        deps.Tx,
		logg:      deps.Logger,
		cfg:       cfg,
		kind:      kind,
		aggregate: aggregate,
		build:     build,
		fee:       fee,
		now:       clock,
	}, nil
}

// GenerateCode mints a single-use code and inserts the pending row. Only an
// authorized representative of the company may issue invites.
func (s *Service[T, PT]) GenerateCode(ctx context.Context, actorID uuid.UUID, input GenerateCodeInput) (*InviteDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.requireRep(ctx, actorID, input.CompanyID); err != nil {
		return nil, err
	}
	if input.FeePercentage != nil {
		if err := validateFee(*input.FeePercentage); err != nil {
			return nil, err
		}
	}
	days := s.cfg.DefaultExpiryDays
	if input.ExpiresInDays != nil {
		days = *input.ExpiresInDays
	}
	if days <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expires_in_days must be positive")
	}

	code, err := invitecode.GenerateUnique(ctx, s.cfg.CodeLength, s.cfg.MaxGenerateRetries, invitecode.CollisionCheckerFunc(s.codeInUse))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generate invite code")
	}

	expiresAt := s.now().Add(time.Duration(days) * 24 * time.Hour)
	row := s.build(models.Association{
		CompanyID:  input.CompanyID,
		InviteCode: &code,
		Status:     enums.AssociationStatusPending,
		ExpiresAt:  &expiresAt,
		InvitedBy:  actorID,
	}, input)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.store.CreateTx(tx, row); err != nil {
			return err
		}
		assoc := row.Assoc()
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInviteIssued,
			AggregateType: s.aggregate,
			AggregateID:   assoc.ID,
			Actor:         s.actor(actorID, assoc.CompanyID),
			Data:          issuedPayload(assoc, s.kind),
			Version:       1,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invite")
	}
	return inviteFromModel(row.Assoc(), s.kind, s.fee(row)), nil
}

// PreviewCode resolves a code to the issuing company's summary and the
// invite terms without mutating anything.
func (s *Service[T, PT]) PreviewCode(ctx context.Context, actorID uuid.UUID, rawCode string) (*PreviewDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	row, err := s.resolveCode(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	assoc := row.Assoc()
	summary, err := s.companies.GetSummary(ctx, assoc.CompanyID)
	if err != nil {
		return nil, err
	}
	return &PreviewDTO{
		Company:       *summary,
		Kind:          s.kind,
		FeePercentage: s.fee(row),
		ExpiresAt:     cloneTime(assoc.ExpiresAt),
	}, nil
}

// RedeemCode binds the caller to the invite's company. The write is guarded
// by a predicate re-asserting pending+unbound at update time, so two
// concurrent redeemers cannot both win; the loser either gets an idempotent
// success (same caller double-submit) or a definitive already-used failure.
func (s *Service[T, PT]) RedeemCode(ctx context.Context, callerID uuid.UUID, rawCode string) (*RedeemResultDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	row, err := s.resolveCode(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	assoc := row.Assoc()
	companyID := assoc.CompanyID

	existing, err := s.store.FindLatestByCompanyAndInvitee(ctx, companyID, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing association")
	}

	var result *RedeemResultDTO
	switch {
	case existing != nil && existing.Assoc().Status == enums.AssociationStatusActive:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "already associated with this company")

	case existing != nil && existing.Assoc().Status.IsDormant():
		result, err = s.reactivate(ctx, callerID, existing, assoc.ID)

	default:
		result, err = s.claim(ctx, callerID, assoc.ID, companyID)
	}
	if err != nil {
		return nil, err
	}

	// Best-effort convenience pointer; the association row is the source of
	// truth, so a failure here never fails the redemption.
	if s.users != nil {
		if backfillErr := s.users.SetCurrentCompanyIfEmpty(ctx, callerID, companyID); backfillErr != nil && s.logg != nil {
			logCtx := s.logg.WithField(ctx, "user_id", callerID.String())
			s.logg.Warn(logCtx, "current company backfill failed")
		}
	}
	return result, nil
}

func (s *Service[T, PT]) reactivate(ctx context.Context, callerID uuid.UUID, existing PT, pendingID uuid.UUID) (*RedeemResultDTO, error) {
	joinedAt := s.now()
	existingID := existing.Assoc().ID
	companyID := existing.Assoc().CompanyID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.store.Reactivate(tx, existingID, joinedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Someone flipped the row concurrently; accept it only if it
			// landed active.
			reread, err := s.store.FindByIDTx(tx, existingID)
			if err != nil {
				return err
			}
			if reread.Assoc().Status != enums.AssociationStatusActive {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "association is not eligible for reactivation")
			}
		}
		// The fresh code row is no longer needed; deleting an already-deleted
		// row is a no-op, which keeps this step safe to retry.
		if _, err := s.store.DeletePendingTx(tx, pendingID); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssociationActivated,
			AggregateType: s.aggregate,
			AggregateID:   existingID,
			Actor:         s.actor(callerID, companyID),
			Data:          activatedPayload(existingID, companyID, callerID, s.kind, true, joinedAt),
			Version:       1,
		})
	})
	if err != nil {
		return nil, asDependency(err, "reactivate association")
	}
	return &RedeemResultDTO{
		AssociationID: existingID,
		CompanyID:     companyID,
		Kind:          s.kind,
		Status:        enums.AssociationStatusActive,
		JoinedAt:      joinedAt,
		Reactivated:   true,
	}, nil
}

func (s *Service[T, PT]) claim(ctx context.Context, callerID, pendingID, companyID uuid.UUID) (*RedeemResultDTO, error) {
	joinedAt := s.now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.store.ClaimInvite(tx, pendingID, callerID, joinedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			reread, err := s.store.FindByIDTx(tx, pendingID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, "invite code already used")
				}
				return err
			}
			assoc := reread.Assoc()
			if assoc.InviteeID != nil && *assoc.InviteeID == callerID && assoc.Status == enums.AssociationStatusActive {
				// Same caller won a concurrent request; no second event.
				if assoc.JoinedAt != nil {
					joinedAt = *assoc.JoinedAt
				}
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "invite code already used")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssociationActivated,
			AggregateType: s.aggregate,
			AggregateID:   pendingID,
			Actor:         s.actor(callerID, companyID),
			Data:          activatedPayload(pendingID, companyID, callerID, s.kind, false, joinedAt),
			Version:       1,
		})
	})
	if err != nil {
		return nil, asDependency(err, "redeem invite")
	}
	return &RedeemResultDTO{
		AssociationID: pendingID,
		CompanyID:     companyID,
		Kind:          s.kind,
		Status:        enums.AssociationStatusActive,
		JoinedAt:      joinedAt,
		Reactivated:   false,
	}, nil
}

// RevokeCode deletes a never-used invite outright; for a used one it
// deactivates the member instead. Membership history rows are never
// hard-deleted.
func (s *Service[T, PT]) RevokeCode(ctx context.Context, actorID, associationID uuid.UUID) error {
	row, err := s.loadForRep(ctx, actorID, associationID)
	if err != nil {
		return err
	}
	assoc := row.Assoc()
	if assoc.InviteeID == nil {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			affected, err := s.store.DeletePendingTx(tx, associationID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "invite code already used")
			}
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventInviteRevoked,
				AggregateType: s.aggregate,
				AggregateID:   associationID,
				Actor:         s.actor(actorID, assoc.CompanyID),
				Data:          revokedPayload(associationID, assoc.CompanyID, s.kind),
				Version:       1,
			})
		})
		return asDependency(err, "revoke invite")
	}
	return s.deactivate(ctx, actorID, row)
}

// RemoveMember deactivates an established association.
func (s *Service[T, PT]) RemoveMember(ctx context.Context, actorID, associationID uuid.UUID) error {
	row, err := s.loadForRep(ctx, actorID, associationID)
	if err != nil {
		return err
	}
	if row.Assoc().InviteeID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "association has no member to remove")
	}
	return s.deactivate(ctx, actorID, row)
}

func (s *Service[T, PT]) deactivate(ctx context.Context, actorID uuid.UUID, row PT) error {
	assoc := row.Assoc()
	if assoc.Status == enums.AssociationStatusInactive {
		return nil
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.store.UpdateStatusTx(tx, assoc.ID, []enums.AssociationStatus{
			enums.AssociationStatusActive,
			enums.AssociationStatusSuspended,
		}, enums.AssociationStatusInactive)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Already inactive; nothing to announce.
			return nil
		}
		inviteeID := uuid.Nil
		if assoc.InviteeID != nil {
			inviteeID = *assoc.InviteeID
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAssociationDeactivated,
			AggregateType: s.aggregate,
			AggregateID:   assoc.ID,
			Actor:         s.actor(actorID, assoc.CompanyID),
			Data:          deactivatedPayload(assoc.ID, assoc.CompanyID, inviteeID, s.kind),
			Version:       1,
		})
	})
	return asDependency(err, "deactivate association")
}

// ListActive returns the company's established members.
func (s *Service[T, PT]) ListActive(ctx context.Context, actorID, companyID uuid.UUID) ([]AssociationDTO, error) {
	if err := s.requireRep(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListActive(ctx, companyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active associations")
	}
	out := make([]AssociationDTO, 0, len(rows))
	for i := range rows {
		row := PT(&rows[i])
		out = append(out, associationFromModel(row.Assoc(), s.kind, s.fee(row)))
	}
	return out, nil
}

// ListUnusedCodes returns outstanding redeemable invites. Expired rows are
// filtered out even though they still exist in the table.
func (s *Service[T, PT]) ListUnusedCodes(ctx context.Context, actorID, companyID uuid.UUID) ([]InviteDTO, error) {
	if err := s.requireRep(ctx, actorID, companyID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListUnusedCodes(ctx, companyID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unused invite codes")
	}
	out := make([]InviteDTO, 0, len(rows))
	for i := range rows {
		row := PT(&rows[i])
		out = append(out, *inviteFromModel(row.Assoc(), s.kind, s.fee(row)))
	}
	return out, nil
}

// resolveCode normalizes, validates, and fetches the code row, applying the
// lazy expiry check shared by preview and redeem.
func (s *Service[T, PT]) resolveCode(ctx context.Context, rawCode string) (PT, error) {
	if !invitecode.ValidateFormat(rawCode, s.cfg.CodeLength) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invite code is malformed")
	}
	code := invitecode.Normalize(rawCode)
	row, err := s.store.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invite code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up invite code")
	}
	assoc := row.Assoc()
	if assoc.InviteeID != nil || assoc.Status != enums.AssociationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "invite code already used")
	}
	if assoc.CodeExpired(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeExpired, "invite code has expired")
	}
	return row, nil
}

func (s *Service[T, PT]) loadForRep(ctx context.Context, actorID, associationID uuid.UUID) (PT, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	row, err := s.store.FindByID(ctx, associationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "association not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load association")
	}
	if err := s.requireRep(ctx, actorID, row.Assoc().CompanyID); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Service[T, PT]) requireRep(ctx context.Context, actorID, companyID uuid.UUID) error {
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

func (s *Service[T, PT]) codeInUse(ctx context.Context, code string) (bool, error) {
	exists, err := s.store.CodeExists(ctx, code)
	if err != nil || exists {
		return exists, err
	}
	if s.peerCodes == nil {
		return false, nil
	}
	return s.peerCodes.CodeExists(ctx, code)
}

func (s *Service[T, PT]) actor(userID, companyID uuid.UUID) *outbox.ActorRef {
	company := companyID
	return &outbox.ActorRef{UserID: userID, CompanyID: &company}
}

func validateFee(fee decimal.Decimal) error {
	if fee.IsNegative() || fee.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "fee percentage must be between 0 and 100")
	}
	return nil
}

// asDependency wraps storage failures while letting typed errors raised
// inside a transaction pass through unchanged.
func asDependency(err error, msg string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}
