package model

import (
	"time"
)

// 互动类型
const (
	InteractionLike     = "like"
	InteractionBookmark = "bookmark"
)

type Interaction struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_user_post_type" json:"user_id"`
	PostID    int64     `gorm:"not null;uniqueIndex:uk_user_post_type;index" json:"post_id"`
	Type      string    `gorm:"size:20;not null;uniqueIndex:uk_user_post_type" json:"type"` // like, bookmark
	CreatedAt time.Time `json:"created_at"`
}

func (Interaction) TableName() string {
	return "interactions"
}

// Follow 关注关系
type Follow struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	FollowerID int64     `gorm:"not null;uniqueIndex:uk_follower_followee" json:"follower_id"`
	FolloweeID int64     `gorm:"not null;uniqueIndex:uk_follower_followee;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
