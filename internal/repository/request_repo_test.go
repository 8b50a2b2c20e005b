package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/testutil"
)

func TestRequestRepository_DecideTopUp_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewRequestRepository(db)

	user := testutil.TestUser(t, db)
	req := testutil.TestTopUpRequest(t, db, user.ID, 500, 50)

	hit, err := repo.DecideTopUp(db, req.ID, model.RequestApproved)
	require.NoError(t, err)
	assert.True(t, hit)

	// 状态已不是 pending，第二次流转落空
	hit, err = repo.DecideTopUp(db, req.ID, model.RequestRejected)
	require.NoError(t, err)
	assert.False(t, hit)

	var fresh model.TopUpRequest
	require.NoError(t, db.First(&fresh, req.ID).Error)
	assert.Equal(t, model.RequestApproved, fresh.Status)
}

func TestRequestRepository_DecideWithdraw_OnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewRequestRepository(db)

	user := testutil.TestUser(t, db)
	req := testutil.TestWithdrawRequest(t, db, user.ID, 5000)

	hit, err := repo.DecideWithdraw(db, req.ID, model.RequestRejected)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = repo.DecideWithdraw(db, req.ID, model.RequestApproved)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRequestRepository_HasPendingPromotion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewRequestRepository(db)

	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)

	pending, err := repo.HasPendingPromotion(post.ID)
	require.NoError(t, err)
	assert.False(t, pending)

	promo := &model.PromotionRequest{
		UserID:       user.ID,
		PostID:       post.ID,
		DurationDays: 1,
		Cost:         200,
		Status:       model.RequestPending,
		PendingPost:  &post.ID,
	}
	require.NoError(t, repo.CreatePromotion(promo))

	pending, err = repo.HasPendingPromotion(post.ID)
	require.NoError(t, err)
	assert.True(t, pending)

	hit, err := repo.DecidePromotion(db, promo.ID, model.RequestApproved)
	require.NoError(t, err)
	assert.True(t, hit)

	pending, err = repo.HasPendingPromotion(post.ID)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestRequestRepository_PendingPromotionUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewRequestRepository(db)

	user := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, user.ID)

	first := &model.PromotionRequest{
		UserID:       user.ID,
		PostID:       post.ID,
		DurationDays: 1,
		Cost:         200,
		Status:       model.RequestPending,
		PendingPost:  &post.ID,
	}
	require.NoError(t, repo.CreatePromotion(first))

	// 同一帖子的第二个待审批单撞唯一索引，并发下单也只能成一单
	second := &model.PromotionRequest{
		UserID:       user.ID,
		PostID:       post.ID,
		DurationDays: 3,
		Cost:         400,
		Status:       model.RequestPending,
		PendingPost:  &post.ID,
	}
	assert.Error(t, repo.CreatePromotion(second))

	// 审批后清空占位，可以再次下单
	hit, err := repo.DecidePromotion(db, first.ID, model.RequestRejected)
	require.NoError(t, err)
	assert.True(t, hit)

	second.ID = 0
	require.NoError(t, repo.CreatePromotion(second))
}

func TestRequestRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewRequestRepository(db)

	a := testutil.TestUser(t, db)
	b := testutil.TestUser(t, db)
	testutil.TestTopUpRequest(t, db, a.ID, 500, 50)
	approved := testutil.TestTopUpRequest(t, db, b.ID, 1200, 100)
	_, err := repo.DecideTopUp(db, approved.ID, model.RequestApproved)
	require.NoError(t, err)

	reqs, total, err := repo.ListTopUps(1, 10, model.RequestPending, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reqs, 1)
	assert.Equal(t, a.ID, reqs[0].UserID)

	// 按用户过滤
	reqs, total, err = repo.ListTopUps(1, 10, "", b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, reqs, 1)
	assert.Equal(t, model.RequestApproved, reqs[0].Status)
}
