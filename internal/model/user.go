package model

import (
	"time"
)

// 用户角色
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 用户状态
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	Username              string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Name                  string     `gorm:"size:100;not null" json:"name"`
	Email                 *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash          *string    `gorm:"size:255" json:"-"`
	AvatarURL             string     `gorm:"size:500" json:"avatar_url"`
	Bio                   string     `gorm:"type:text" json:"bio"`
	WaNumber              string     `gorm:"size:30" json:"wa_number,omitempty"`
	Address               string     `gorm:"size:200" json:"address,omitempty"`
	Role                  string     `gorm:"size:20;default:user;index" json:"role"` // user, admin
	Status                string     `gorm:"size:20;default:active" json:"status"`   // active, suspended
	FollowerCount         int        `gorm:"default:0" json:"follower_count"`
	FollowingCount        int        `gorm:"default:0" json:"following_count"`
	Balance               float64    `gorm:"type:decimal(20,4);default:0" json:"balance"`
	Version               int64      `gorm:"default:0" json:"-"` // 余额乐观锁版本号
	EmailVerified         bool       `gorm:"default:false" json:"email_verified"`
	VerificationCode      *string    `gorm:"size:100" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
