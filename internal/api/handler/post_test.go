package handler

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/pkg/queue"
	"github.com/voke-app/voke_server/internal/pkg/response"
	"github.com/voke-app/voke_server/internal/repository"
	"github.com/voke-app/voke_server/internal/service"
	"github.com/voke-app/voke_server/internal/testutil"
)

func setupPostRouter(t *testing.T, userID int64) (*gin.Engine, *gorm.DB, *queue.Queue, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	viewQueue := queue.NewQueue(client, "test:view_queue")

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postSvc := service.NewPostService(
		repository.NewPostRepository(db),
		userRepo,
		repository.NewInteractionRepository(db),
		followRepo,
		repository.NewViewRepository(db),
		repository.NewReportRepository(db),
		viewQueue,
	)
	userSvc := service.NewUserService(userRepo, followRepo, nil)
	handler := NewPostHandler(postSvc, userSvc)

	router := gin.New()
	authed := router.Group("/", asUser(userID))
	{
		authed.POST("/posts", handler.Create)
		authed.DELETE("/posts/:id", handler.Delete)
		authed.GET("/posts/:id", handler.Get)
		authed.POST("/posts/:id/like", handler.Like)
		authed.DELETE("/posts/:id/like", handler.Unlike)
		authed.POST("/posts/:id/view", handler.View)
		authed.POST("/posts/:id/report", handler.Report)
	}

	cleanup := func() {
		client.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return router, db, viewQueue, cleanup
}

func TestPostHandler_Create(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	user := testutil.TestUser(t, db)
	require.Equal(t, int64(1), user.ID)

	body := map[string]interface{}{
		"title":   "第一篇帖子",
		"content": "正文内容",
		"caption": "摘要",
	}
	w := performRequest(router, "POST", "/posts", body)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "第一篇帖子", data["title"])
	author := data["author"].(map[string]interface{})
	assert.Equal(t, float64(user.ID), author["id"].(float64))
}

func TestPostHandler_Create_MissingTitle(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	testutil.TestUser(t, db)

	w := performRequest(router, "POST", "/posts", map[string]interface{}{"content": "正文"})
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeParamError, resp.Code)
}

func TestPostHandler_LikeUnlike(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	viewer := testutil.TestUser(t, db)
	author := testutil.TestUser(t, db, testutil.WithUsername("author"))
	post := testutil.TestPost(t, db, author.ID)
	require.Equal(t, int64(1), viewer.ID)

	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/like", post.ID), nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	// 重复点赞
	w = performRequest(router, "POST", fmt.Sprintf("/posts/%d/like", post.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)

	w = performRequest(router, "DELETE", fmt.Sprintf("/posts/%d/like", post.ID), nil)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeSuccess, resp.Code)
}

func TestPostHandler_View(t *testing.T) {
	router, db, viewQueue, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	viewer := testutil.TestUser(t, db)
	author := testutil.TestUser(t, db, testutil.WithUsername("author"))
	post := testutil.TestPost(t, db, author.ID)
	require.Equal(t, int64(1), viewer.ID)

	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/view", post.ID), nil)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.True(t, data["queued"].(bool))

	length, err := viewQueue.Length(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestPostHandler_View_NotFound(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	testutil.TestUser(t, db)

	w := performRequest(router, "POST", "/posts/9999/view", nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestPostHandler_Report(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	viewer := testutil.TestUser(t, db)
	author := testutil.TestUser(t, db, testutil.WithUsername("author"))
	post := testutil.TestPost(t, db, author.ID)
	require.Equal(t, int64(1), viewer.ID)

	body := map[string]interface{}{"reason": "含有违规内容"}
	w := performRequest(router, "POST", fmt.Sprintf("/posts/%d/report", post.ID), body)
	resp := parseResponse(t, w)
	require.Equal(t, response.CodeSuccess, resp.Code)

	// 重复举报
	w = performRequest(router, "POST", fmt.Sprintf("/posts/%d/report", post.ID), body)
	resp = parseResponse(t, w)
	assert.Equal(t, response.CodeDuplicateAction, resp.Code)
}

func TestPostHandler_Delete_NotOwner(t *testing.T) {
	router, db, _, cleanup := setupPostRouter(t, 1)
	defer cleanup()

	testutil.TestUser(t, db)
	author := testutil.TestUser(t, db, testutil.WithUsername("author"))
	post := testutil.TestPost(t, db, author.ID)

	w := performRequest(router, "DELETE", fmt.Sprintf("/posts/%d", post.ID), nil)
	resp := parseResponse(t, w)
	assert.Equal(t, response.CodePermissionDenied, resp.Code)
}
