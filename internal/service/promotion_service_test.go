package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/testutil"
)

func setupPromotionService(t *testing.T) (*PromotionService, *gorm.DB, func()) {
	t.Helper()

	walletSvc, db, cleanup := setupWalletService(t)
	postRepo := repository.NewPostRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	svc := NewPromotionService(postRepo, requestRepo, walletSvc, testConfig())
	return svc, db, cleanup
}

func TestPromotionService_Purchase(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, user.ID)

	resp, err := svc.Purchase(user.ID, post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 300.0, resp.Balance)

	var fresh model.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.Equal(t, model.PromoPending, fresh.PromoStatus)

	var req model.PromotionRequest
	require.NoError(t, db.First(&req, resp.RequestID).Error)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, 200.0, req.Cost)
}

func TestPromotionService_Purchase_InsufficientBalance(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(100))
	post := testutil.TestPost(t, db, user.ID)

	_, err := svc.Purchase(user.ID, post.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// 扣费失败时申请单随事务回滚
	var count int64
	db.Model(&model.PromotionRequest{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	var fresh model.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.Equal(t, model.PromoNone, fresh.PromoStatus)
}

func TestPromotionService_Purchase_NotOwner(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, owner.ID)

	_, err := svc.Purchase(other.ID, post.ID, 1)
	assert.ErrorIs(t, err, ErrNotPostOwner)
}

func TestPromotionService_Purchase_UnknownPlan(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, user.ID)

	_, err := svc.Purchase(user.ID, post.ID, 30)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPromotionService_Purchase_AlreadyPending(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(1000))
	post := testutil.TestPost(t, db, user.ID)

	_, err := svc.Purchase(user.ID, post.ID, 1)
	require.NoError(t, err)

	_, err = svc.Purchase(user.ID, post.ID, 1)
	assert.ErrorIs(t, err, ErrPromotionPending)
}

func TestPromotionService_Purchase_ConcurrentOnlyOneWins(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(1000))
	post := testutil.TestPost(t, db, user.ID)

	// 并发抢同一个推广位，pending_post 唯一索引保证只成一单
	const n = 5
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := svc.Purchase(user.ID, post.ID, 1)
			errs <- err
		}()
	}

	success := 0
	for i := 0; i < n; i++ {
		err := <-errs
		if err == nil {
			success++
		} else {
			assert.ErrorIs(t, err, ErrPromotionPending)
		}
	}
	assert.Equal(t, 1, success)

	// 只扣一次费，只留一张申请单
	var fresh model.User
	require.NoError(t, db.First(&fresh, user.ID).Error)
	assert.Equal(t, 800.0, fresh.Balance)

	var count int64
	db.Model(&model.PromotionRequest{}).Where("post_id = ?", post.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPromotionService_Decide_Approve(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, user.ID)

	resp, err := svc.Purchase(user.ID, post.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Decide(resp.RequestID, true))

	var fresh model.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.Equal(t, model.PromoActive, fresh.PromoStatus)
	require.NotNil(t, fresh.PromotedUntil)
	assert.True(t, fresh.PromotedUntil.After(time.Now().Add(71*time.Hour)))

	// 批准不退款
	var freshUser model.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	assert.Equal(t, 100.0, freshUser.Balance)
}

func TestPromotionService_Decide_RejectRefundsOnce(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, user.ID)

	resp, err := svc.Purchase(user.ID, post.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Decide(resp.RequestID, false))

	// 退款补偿入账，余额回到原点
	var freshUser model.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	assert.Equal(t, 500.0, freshUser.Balance)

	var fresh model.Post
	require.NoError(t, db.First(&fresh, post.ID).Error)
	assert.Equal(t, model.PromoRejected, fresh.PromoStatus)

	// 重复驳回不会二次退款
	err = svc.Decide(resp.RequestID, false)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	assert.Equal(t, 500.0, freshUser.Balance)
}

func TestPromotionService_Decide_DoubleApprove(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db, testutil.WithBalance(500))
	post := testutil.TestPost(t, db, user.ID)

	resp, err := svc.Purchase(user.ID, post.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Decide(resp.RequestID, true))
	err = svc.Decide(resp.RequestID, true)
	assert.ErrorIs(t, err, ErrAlreadyApplied)
}

func TestPromotionService_SweepExpired(t *testing.T) {
	svc, db, cleanup := setupPromotionService(t)
	defer cleanup()

	user := testutil.TestUser(t, db)

	expired := testutil.TestPost(t, db, user.ID)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", expired.ID).
		Updates(map[string]interface{}{"promo_status": model.PromoActive, "promoted_until": past}).Error)

	active := testutil.TestPost(t, db, user.ID)
	future := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", active.ID).
		Updates(map[string]interface{}{"promo_status": model.PromoActive, "promoted_until": future}).Error)

	cleared, err := svc.SweepExpired(100)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)

	var freshExpired, freshActive model.Post
	require.NoError(t, db.First(&freshExpired, expired.ID).Error)
	require.NoError(t, db.First(&freshActive, active.ID).Error)
	assert.Equal(t, model.PromoNone, freshExpired.PromoStatus)
	assert.Equal(t, model.PromoActive, freshActive.PromoStatus)

	// 到期清理不产生任何流水
	var count int64
	db.Model(&model.WalletTransaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
