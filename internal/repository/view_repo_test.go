package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voke-app/voke_server/internal/model"
	"github.com/voke-app/voke_server/internal/testutil"
)

func TestViewRepository_UniquePerViewer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	repo := NewViewRepository(db)

	author := testutil.TestUser(t, db)
	viewer := testutil.TestUser(t, db)
	post := testutil.TestPost(t, db, author.ID)

	require.NoError(t, repo.Create(db, &model.ViewEvent{PostID: post.ID, ViewerID: viewer.ID}))

	// (post_id, viewer_id) 唯一
	err := repo.Create(db, &model.ViewEvent{PostID: post.ID, ViewerID: viewer.ID})
	assert.Error(t, err)

	exists, err := repo.Exists(post.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	count, err := repo.CountByPostID(post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
