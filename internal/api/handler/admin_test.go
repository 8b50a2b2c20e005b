package handler

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
	"github.com/voke-app/voke_server/internal/testutil"
)

func setupAdminRouter(t *testing.T) (*gin.Engine, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testHandlerConfig()

	walletSvc := newWalletService(db, cfg)
	adminSvc := service.NewAdminService(
		repository.NewUserRepository(db),
		repository.NewRequestRepository(db),
		repository.NewReportRepository(db),
		repository.NewSettingRepository(db),
		walletSvc,
		cfg,
	)
	promoSvc := service.NewPromotionService(
		repository.NewPostRepository(db),
		repository.NewRequestRepository(db),
		walletSvc,
		cfg,
	)
	handler := NewAdminHandler(adminSvc, walletSvc, promoSvc)

	router := gin.New()
	admin := router.Group("/admin")
	{
		admin.GET("/users", handler.ListUsers)
		admin.POST("/users/:id/suspend", handler.SuspendUser)
		admin.POST("/users/:id/activate", handler.ActivateUser)
		admin.POST("/wallet/adjust", handler.AdjustBalance)
		admin.GET("/settings/view-rate", handler.GetViewRate)
		admin.PUT("/settings/view-rate", handler.UpdateViewRate)
		admin.GET("/topups", handler.ListTopUps)
		admin.POST("/topups/:id/approve", handler.DecideTopUp(true))
		admin.POST("/topups/:id/reject", handler.DecideTopUp(false))
		admin.POST("/withdraws/:id/approve", handler.DecideWithdraw(true))
		admin.POST("/withdraws/:id/reject", handler.DecideWithdraw(false))
	}

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}

	return router, db, cleanup
}

func TestAdminHandler_SuspendAndActivateUser(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	w := performRequest(router, "POST", fmt.Sprintf("/admin/users/%d/suspend", user.ID), nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.Equal(t, "suspended", user.Status)

	w = performRequest(router, "POST", fmt.Sprintf("/admin/users/%d/activate", user.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.Equal(t, "active", user.Status)
}

func TestAdminHandler_SuspendUser_NotFound(t *testing.T) {
	router, _, cleanup := setupAdminRouter(t)
	defer cleanup()

	w := performRequest(router, "POST", "/admin/users/9999/suspend", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestAdminHandler_AdjustBalance(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(100))

	body := map[string]interface{}{
		"user_id":         user.ID,
		"delta":           -30,
		"reason":          "活动违规扣除",
		"idempotency_key": "manual-adjust-1",
	}
	w := performRequest(router, "POST", "/admin/wallet/adjust", body)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.InDelta(t, 70, user.Balance, 0.0001)
}

func TestAdminHandler_AdjustBalance_Insufficient(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(100))

	body := map[string]interface{}{
		"user_id":         user.ID,
		"delta":           -500,
		"reason":          "扣除测试",
		"idempotency_key": "manual-adjust-2",
	}
	w := performRequest(router, "POST", "/admin/wallet/adjust", body)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeInsufficientBalance, resp.Code)

	// 余额不变
	require.NoError(t, db.First(user, user.ID).Error)
	assert.InDelta(t, 100, user.Balance, 0.0001)
}

func TestAdminHandler_ViewRate(t *testing.T) {
	router, _, cleanup := setupAdminRouter(t)
	defer cleanup()

	// 未配置时返回默认值
	w := performRequest(router, "GET", "/admin/settings/view-rate", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)
	data := resp.Data.(map[string]interface{})
	assert.InDelta(t, 0.0001, data["rate"].(float64), 1e-9)

	w = performRequest(router, "PUT", "/admin/settings/view-rate", map[string]interface{}{"rate": 0.5})
	resp = parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "GET", "/admin/settings/view-rate", nil)
	resp = parseResponse(t, w)
	data = resp.Data.(map[string]interface{})
	assert.InDelta(t, 0.5, data["rate"].(float64), 1e-9)
}

func TestAdminHandler_DecideTopUp(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	req := testutil.TestTopUpRequest(t, db, user.ID, 500, 50)

	w := performRequest(router, "POST", fmt.Sprintf("/admin/topups/%d/approve", req.ID), nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.InDelta(t, 500, user.Balance, 0.0001)

	// 重复审批被拒绝，余额不再变化
	w = performRequest(router, "POST", fmt.Sprintf("/admin/topups/%d/approve", req.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.InDelta(t, 500, user.Balance, 0.0001)
}

func TestAdminHandler_DecideWithdraw_Insufficient(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(150))
	req := testutil.TestWithdrawRequest(t, db, user.ID, 200)

	w := performRequest(router, "POST", fmt.Sprintf("/admin/withdraws/%d/approve", req.ID), nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeInsufficientBalance, resp.Code)

	require.NoError(t, db.First(user, user.ID).Error)
	assert.InDelta(t, 150, user.Balance, 0.0001)
}

func TestAdminHandler_ListTopUps(t *testing.T) {
	router, db, cleanup := setupAdminRouter(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	testutil.TestTopUpRequest(t, db, user.ID, 500, 50)
	testutil.TestTopUpRequest(t, db, user.ID, 1200, 100)

	w := performRequest(router, "GET", "/admin/topups?status=pending", nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"].(float64))
}
