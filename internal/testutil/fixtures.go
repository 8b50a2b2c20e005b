package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("test_%d@example.com", seq)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:      fmt.Sprintf("testuser_%d", seq),
		Name:          fmt.Sprintf("Test User %d", seq),
		Email:         &email,
		PasswordHash:  &passwordHash,
		Role:          model.RoleUser,
		Status:        model.UserStatusActive,
		Balance:       0,
		EmailVerified: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithBalance 设置初始余额
func WithBalance(balance float64) func(*model.User) {
	return func(u *model.User) {
		u.Balance = balance
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestPost 创建测试帖子
func TestPost(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Post)) *model.Post {
	t.Helper()

	post := &model.Post{
		UserID:      userID,
		Content:     fmt.Sprintf("Test post content %d", nextSeq()),
		PromoStatus: model.PromoNone,
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return post
}

// WithContent 设置帖子内容
func WithContent(content string) func(*model.Post) {
	return func(p *model.Post) {
		p.Content = content
	}
}

// WithPromo 设置推广状态
func WithPromo(status string) func(*model.Post) {
	return func(p *model.Post) {
		p.PromoStatus = status
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, userID, postID int64, content string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:  userID,
		PostID:  postID,
		Content: content,
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// TestReply 创建测试回复
func TestReply(t *testing.T, db *gorm.DB, userID, postID, parentID int64, content string) *model.Comment {
	t.Helper()

	comment := &model.Comment{
		UserID:   userID,
		PostID:   postID,
		ParentID: &parentID,
		Content:  content,
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	return comment
}

// TestInteraction 创建测试互动
func TestInteraction(t *testing.T, db *gorm.DB, userID, postID int64, interactionType string) *model.Interaction {
	t.Helper()

	interaction := &model.Interaction{
		UserID: userID,
		PostID: postID,
		Type:   interactionType,
	}

	if err := db.Create(interaction).Error; err != nil {
		t.Fatalf("Failed to create test interaction: %v", err)
	}

	return interaction
}

// TestTopUpRequest 创建测试充值申请
func TestTopUpRequest(t *testing.T, db *gorm.DB, userID int64, points, price float64) *model.TopUpRequest {
	t.Helper()

	req := &model.TopUpRequest{
		UserID: userID,
		Points: points,
		Price:  price,
		Status: model.RequestPending,
	}

	if err := db.Create(req).Error; err != nil {
		t.Fatalf("Failed to create test top-up request: %v", err)
	}

	return req
}

// TestWithdrawRequest 创建测试提现申请
func TestWithdrawRequest(t *testing.T, db *gorm.DB, userID int64, amount float64) *model.WithdrawRequest {
	t.Helper()

	req := &model.WithdrawRequest{
		UserID:  userID,
		Amount:  amount,
		Method:  "bank",
		Account: "622200012345",
		Status:  model.RequestPending,
	}

	if err := db.Create(req).Error; err != nil {
		t.Fatalf("Failed to create test withdraw request: %v", err)
	}

	return req
}
