package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/model/dto"
	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/service"
	"github.com/voke-app/voke_server/internal/testutil"
)

func setupWalletHandler(t *testing.T) (*WalletHandler, *gorm.DB, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	handler := NewWalletHandler(newWalletService(db, testHandlerConfig()))

	cleanup := func() {
		testutil.CleanupTestDB(t, db)
	}
	return handler, db, cleanup
}

func TestWalletHandler_GetWallet(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(250))

	router := gin.New()
	router.GET("/wallet", asUser(user.ID), handler.GetWallet)

	w := performRequest(router, "GET", "/wallet", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(250), data["balance"])
}

func TestWalletHandler_ListGifts(t *testing.T) {
	handler, _, cleanup := setupWalletHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/gifts", handler.ListGifts)

	w := performRequest(router, "GET", "/gifts", nil)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	items, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestWalletHandler_SendGift(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	sender := testutil.TestUser(t, db, testutil.WithBalance(100))
	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	router := gin.New()
	router.POST("/posts/:id/gift", asUser(sender.ID), handler.SendGift)

	req := dto.SendGiftRequest{GiftName: "Gold", IdempotencyKey: "gift-http-1"}
	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/gift", post.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(20), data["balance"])
	assert.Equal(t, float64(80), data["gift_total"])
}

func TestWalletHandler_SendGift_InsufficientBalance(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	sender := testutil.TestUser(t, db, testutil.WithBalance(5))
	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	router := gin.New()
	router.POST("/posts/:id/gift", asUser(sender.ID), handler.SendGift)

	req := dto.SendGiftRequest{GiftName: "Gold", IdempotencyKey: "gift-http-2"}
	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/gift", post.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeInsufficientBalance, resp.Code)
}

func TestWalletHandler_SendGift_MissingIdempotencyKey(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	sender := testutil.TestUser(t, db, testutil.WithBalance(100))
	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	router := gin.New()
	router.POST("/posts/:id/gift", asUser(sender.ID), handler.SendGift)

	// 幂等键是必填的
	req := map[string]string{"gift_name": "Gold"}
	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/gift", post.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestWalletHandler_SendGift_IdempotencyKeyTooLong(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	sender := testutil.TestUser(t, db, testutil.WithBalance(100))
	author := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	router := gin.New()
	router.POST("/posts/:id/gift", asUser(sender.ID), handler.SendGift)

	// 超过 80 的幂等键拒收，派生流水键要能放进唯一索引列
	req := map[string]string{
		"gift_name":       "Gold",
		"idempotency_key": strings.Repeat("k", 81),
	}
	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/gift", post.ID), req)
	resp := parseResponse(t, w)

	assert.Equal(t, response.CodeParamError, resp.Code)

	var fresh model.User
	require.NoError(t, db.First(&fresh, sender.ID).Error)
	assert.InDelta(t, 100, fresh.Balance, 0.0001)
}

func TestWalletHandler_CreateTopUp(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	router := gin.New()
	router.POST("/wallet/topup", asUser(user.ID), handler.CreateTopUp)

	w := performRequest(router, "POST", "/wallet/topup", dto.CreateTopUpRequest{PackageID: "p1"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	w = performRequest(router, "POST", "/wallet/topup", dto.CreateTopUpRequest{PackageID: "nope"})
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestWalletHandler_QuoteWithdraw(t *testing.T) {
	handler, _, cleanup := setupWalletHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/wallet/withdraw/quote", handler.QuoteWithdraw)

	w := performRequest(router, "GET", "/wallet/withdraw/quote?amount=5000", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(43500), data["net_amount"])

	w = performRequest(router, "GET", "/wallet/withdraw/quote?amount=abc", nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestWalletHandler_CreateWithdraw(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(6000))

	router := gin.New()
	router.POST("/wallet/withdraw", asUser(user.ID), handler.CreateWithdraw)

	req := dto.CreateWithdrawRequest{Amount: 5000, Method: "bank", Account: "622200012345"}
	w := performRequest(router, "POST", "/wallet/withdraw", req)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	// 低于最低提现额
	req.Amount = 100
	w = performRequest(router, "POST", "/wallet/withdraw", req)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestWalletHandler_ListTransactions(t *testing.T) {
	handler, db, cleanup := setupWalletHandler(t)
	defer cleanup()

	user := testutil.TestUser(t, db)
	svc := newWalletService(db, testHandlerConfig())
	for i := 0; i < 3; i++ {
		_, _, err := svc.Adjust(service.AdjustParams{
			UserID:         user.ID,
			Delta:          10,
			Type:           model.TxAdjustment,
			IdempotencyKey: fmt.Sprintf("seed-%d", i),
		})
		require.NoError(t, err)
	}

	router := gin.New()
	router.GET("/wallet/transactions", asUser(user.ID), handler.ListTransactions)

	w := performRequest(router, "GET", "/wallet/transactions?page=1&page_size=2", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["total"])

	items, ok := data["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}
