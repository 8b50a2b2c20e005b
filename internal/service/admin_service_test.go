package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/testutil"
)

func setupAdminService(t *testing.T) (*AdminService, *gorm.DB, func()) {
	t.Helper()

	walletSvc, db, cleanup := setupWalletService(t)
	svc := NewAdminService(
		repository.NewUserRepository(db),
		repository.NewRequestRepository(db),
		repository.NewReportRepository(db),
		repository.NewSettingRepository(db),
		walletSvc,
		testConfig(),
	)
	return svc, db, cleanup
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, db, cleanup := setupAdminService(t)
	defer cleanup()

	testutil.TestUser(t, db, testutil.WithUsername("searchable_zhang"))
	testutil.TestUser(t, db)

	items, total, err := svc.ListUsers(1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	items, total, err = svc.ListUsers(1, 20, "searchable")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "searchable_zhang", items[0].Username)
}

func TestAdminService_SetUserStatus(t *testing.T) {
	svc, db, cleanup := setupAdminService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	require.NoError(t, svc.SetUserStatus(user.ID, model.UserStatusSuspended))

	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.UserStatusSuspended, fresh.Status)

	require.NoError(t, svc.SetUserStatus(user.ID, model.UserStatusActive))
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, model.UserStatusActive, fresh.Status)

	err := svc.SetUserStatus(999999, model.UserStatusSuspended)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminService_AdjustBalance(t *testing.T) {
	svc, db, cleanup := setupAdminService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(100))

	resp, err := svc.AdjustBalance(&dto.AdjustBalanceRequest{
		UserID:         user.ID,
		Delta:          -30,
		Reason:         "违规扣除",
		IdempotencyKey: "manual-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, resp.Balance)

	// 带键重试不会重复扣
	resp, err = svc.AdjustBalance(&dto.AdjustBalanceRequest{
		UserID:         user.ID,
		Delta:          -30,
		Reason:         "违规扣除",
		IdempotencyKey: "manual-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, resp.Balance)

	// 扣成负数被拒
	_, err = svc.AdjustBalance(&dto.AdjustBalanceRequest{
		UserID:         user.ID,
		Delta:          -200,
		Reason:         "扣太多",
		IdempotencyKey: "manual-2",
	})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestAdminService_ViewRate(t *testing.T) {
	svc, _, cleanup := setupAdminService(t)
	defer cleanup()

	rate, err := svc.GetViewRate()
	require.NoError(t, err)
	assert.Equal(t, 0.0001, rate)

	require.NoError(t, svc.UpdateViewRate(0.002))

	rate, err = svc.GetViewRate()
	require.NoError(t, err)
	assert.Equal(t, 0.002, rate)
}

func TestAdminService_ListRequests(t *testing.T) {
	svc, db, cleanup := setupAdminService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestTopUpRequest(t, db, user.ID, 500, 50)
	testutil.TestWithdrawRequest(t, db, user.ID, 5000)

	topups, total, err := svc.ListTopUps(1, 20, model.RequestPending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, topups, 1)
	assert.Equal(t, user.Username, topups[0].UserName)

	withdraws, total, err := svc.ListWithdraws(1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, withdraws, 1)

	// 状态过滤
	topups, total, err = svc.ListTopUps(1, 20, model.RequestApproved)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, topups)
}

func TestAdminService_ResolveReport(t *testing.T) {
	svc, db, cleanup := setupAdminService(t)
	defer cleanup()

	reporter := testutil.TestUser(t, db)
	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	report := &model.Report{
		PostID:     post.ID,
		ReporterID: reporter.ID,
		Reason:     "灌水",
		Status:     "pending",
	}
	require.NoError(t, db.Create(report).Error)

	require.NoError(t, svc.ResolveReport(report.ID))

	var fresh model.Report
	require.NoError(t, db.First(&fresh, report.ID).Error)
	assert.Equal(t, "resolved", fresh.Status)

	err := svc.ResolveReport(report.ID)
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	err = svc.ResolveReport(999999)
	assert.ErrorIs(t, err, ErrReportNotFound)
}
