package model

import (
	"time"
)

// 推广状态
const (
	PromoNone     = "none"
	PromoPending  = "pending"
	PromoActive   = "promoted"
	PromoRejected = "rejected"
)

type Post struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	UserID        int64      `gorm:"not null;index" json:"user_id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	Caption       string     `gorm:"size:500" json:"caption"`
	LikeCount     int        `gorm:"default:0" json:"like_count"`
	CommentCount  int        `gorm:"default:0" json:"comment_count"`
	ShareCount    int        `gorm:"default:0" json:"share_count"`
	GiftTotal     float64    `gorm:"type:decimal(20,4);default:0" json:"gift_total"`
	ViewCount     int        `gorm:"default:0" json:"view_count"`
	PromoStatus   string     `gorm:"size:20;default:none;index" json:"promo_status"` // none, pending, promoted, rejected
	PromotedUntil *time.Time `gorm:"index" json:"promoted_until,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// IsSpotlighted 推广是否仍在有效期内（过期状态读取时惰性计算，不做余额结算）
func (p *Post) IsSpotlighted(now time.Time) bool {
	return p.PromoStatus == PromoActive && p.PromotedUntil != nil && p.PromotedUntil.After(now)
}

// PostGiftStat 帖子维度的礼物统计
type PostGiftStat struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	PostID   int64  `gorm:"not null;uniqueIndex:uk_post_gift" json:"post_id"`
	GiftName string `gorm:"size:50;not null;uniqueIndex:uk_post_gift" json:"gift_name"`
	Icon     string `gorm:"size:10" json:"icon"`
	Count    int    `gorm:"default:0" json:"count"`
}

func (PostGiftStat) TableName() string {
	return "post_gift_stats"
}
