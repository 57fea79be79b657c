package invites

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

var testDBCounter int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:invites_repo_%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.DispatcherAssociation{}, &models.DriverAssociation{}))
	return db
}

func seedDriverPending(t *testing.T, db *gorm.DB, code string, expiresAt *time.Time) *models.DriverAssociation {
	t.Helper()
	row := &models.DriverAssociation{Association: models.Association{
		CompanyID:  uuid.New(),
		InviteCode: &code,
		Status:     enums.AssociationStatusPending,
		ExpiresAt:  expiresAt,
		InvitedBy:  uuid.New(),
	}}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestClaimInviteFirstWinsSecondMissesPredicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	row := seedDriverPending(t, db, "RACE0001", nil)

	first := uuid.New()
	second := uuid.New()
	joinedAt := time.Now().UTC().Truncate(time.Second)

	affected, err := repo.ClaimInvite(db, row.ID, first, joinedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	// The predicate no longer matches; the second claim must touch nothing.
	affected, err = repo.ClaimInvite(db, row.ID, second, joinedAt)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)

	got, err := repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
	require.Equal(t, enums.AssociationStatusActive, got.Status)
	require.NotNil(t, got.InviteeID)
	require.Equal(t, first, *got.InviteeID)
	require.Nil(t, got.InviteCode)
	require.Nil(t, got.ExpiresAt)
	require.NotNil(t, got.JoinedAt)
}

func TestClaimInviteClearsLookupByCode(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	row := seedDriverPending(t, db, "ONCE0001", nil)

	_, err := repo.ClaimInvite(db, row.ID, uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = repo.FindByCode(context.Background(), "ONCE0001")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReactivateOnlyTouchesDormantRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	invitee := uuid.New()
	row := &models.DriverAssociation{Association: models.Association{
		CompanyID: uuid.New(),
		InviteeID: &invitee,
		Status:    enums.AssociationStatusInactive,
		InvitedBy: uuid.New(),
	}}
	require.NoError(t, db.Create(row).Error)

	affected, err := repo.Reactivate(db, row.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	// Now active; a repeat reactivation misses the predicate.
	affected, err = repo.Reactivate(db, row.ID, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
}

func TestDeletePendingSkipsClaimedRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	row := seedDriverPending(t, db, "DELT0001", nil)

	_, err := repo.ClaimInvite(db, row.ID, uuid.New(), time.Now())
	require.NoError(t, err)

	affected, err := repo.DeletePendingTx(db, row.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)

	// The claimed row survives.
	_, err = repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
}

func TestUpdateStatusTxRespectsFromSet(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	invitee := uuid.New()
	row := &models.DriverAssociation{Association: models.Association{
		CompanyID: uuid.New(),
		InviteeID: &invitee,
		Status:    enums.AssociationStatusInactive,
		InvitedBy: uuid.New(),
	}}
	require.NoError(t, db.Create(row).Error)

	affected, err := repo.UpdateStatusTx(db, row.ID, []enums.AssociationStatus{
		enums.AssociationStatusActive,
		enums.AssociationStatusSuspended,
	}, enums.AssociationStatusInactive)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
}

func TestListUnusedCodesFiltersExpiredAndClaimed(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	now := time.Now()
	companyID := uuid.New()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	expired := &models.DriverAssociation{Association: models.Association{
		CompanyID: companyID, InviteCode: strPtr("EXPD0001"),
		Status: enums.AssociationStatusPending, ExpiresAt: &past, InvitedBy: uuid.New(),
	}}
	live := &models.DriverAssociation{Association: models.Association{
		CompanyID: companyID, InviteCode: strPtr("LIVE0001"),
		Status: enums.AssociationStatusPending, ExpiresAt: &future, InvitedBy: uuid.New(),
	}}
	claimed := &models.DriverAssociation{Association: models.Association{
		CompanyID: companyID, InviteCode: strPtr("CLMD0001"),
		Status: enums.AssociationStatusPending, InvitedBy: uuid.New(),
	}}
	// Expires at this exact instant. CodeExpired still admits it at redeem
	// time, so the listing must show it too.
	boundary := &models.DriverAssociation{Association: models.Association{
		CompanyID: companyID, InviteCode: strPtr("EDGE0001"),
		Status: enums.AssociationStatusPending, ExpiresAt: &now, InvitedBy: uuid.New(),
	}}
	require.NoError(t, db.Create(expired).Error)
	require.NoError(t, db.Create(live).Error)
	require.NoError(t, db.Create(claimed).Error)
	require.NoError(t, db.Create(boundary).Error)
	_, err := repo.ClaimInvite(db, claimed.ID, uuid.New(), now)
	require.NoError(t, err)

	rows, err := repo.ListUnusedCodes(context.Background(), companyID, now)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	listed := map[uuid.UUID]bool{}
	for _, row := range rows {
		listed[row.ID] = true
	}
	require.True(t, listed[live.ID])
	require.True(t, listed[boundary.ID])
}

func TestListActiveRequiresBoundInvitee(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	companyID := uuid.New()
	seedDriverPending(t, db, "PEND0001", nil)

	invitee := uuid.New()
	joined := time.Now()
	member := &models.DriverAssociation{Association: models.Association{
		CompanyID: companyID,
		InviteeID: &invitee,
		Status:    enums.AssociationStatusActive,
		JoinedAt:  &joined,
		InvitedBy: uuid.New(),
	}}
	require.NoError(t, db.Create(member).Error)

	rows, err := repo.ListActive(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, member.ID, rows[0].ID)
}

func TestFindLatestByCompanyAndInviteeNoRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)

	row, err := repo.FindLatestByCompanyAndInvitee(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestCodeExistsAcrossTable(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	seedDriverPending(t, db, "HERE0001", nil)

	exists, err := repo.CodeExists(context.Background(), "HERE0001")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.CodeExists(context.Background(), "GONE0001")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDeleteExpiredPendingBefore(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository[models.DriverAssociation, *models.DriverAssociation](db)
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	fresh := now.Add(time.Hour)
	seedDriverPending(t, db, "SWEEP001", &old)
	keep := seedDriverPending(t, db, "SWEEP002", &fresh)

	deleted, err := repo.DeleteExpiredPendingBefore(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	_, err = repo.FindByID(context.Background(), keep.ID)
	require.NoError(t, err)
}

func TestFeeRepositoryUpdateFee(t *testing.T) {
	db := openTestDB(t)
	fees := NewFeeRepository(db)
	invitee := uuid.New()
	row := &models.DispatcherAssociation{
		Association: models.Association{
			CompanyID: uuid.New(),
			InviteeID: &invitee,
			Status:    enums.AssociationStatusActive,
			InvitedBy: uuid.New(),
		},
		FeePercentage: decimal.NewFromInt(10),
	}
	require.NoError(t, db.Create(row).Error)

	fee := decimal.RequireFromString("12.5")
	affected, err := fees.UpdateFee(context.Background(), row.ID, fee)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	var got models.DispatcherAssociation
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	require.True(t, got.FeePercentage.Equal(fee))

	affected, err = fees.UpdateFee(context.Background(), uuid.New(), fee)
	require.NoError(t, err)
	require.EqualValues(t, 0, affected)
}

func strPtr(s string) *string { return &s }
