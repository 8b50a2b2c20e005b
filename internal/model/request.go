package model

import (
	"time"
)

// 审批状态
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// TopUpRequest 充值申请，管理员审批后入账
type TopUpRequest struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Points    float64   `gorm:"type:decimal(20,4);not null" json:"points"`
	Price     float64   `gorm:"type:decimal(20,4);not null" json:"price"`
	Status    string    `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TopUpRequest) TableName() string {
	return "topup_requests"
}

// WithdrawRequest 提现申请，审批时才真正扣减余额
type WithdrawRequest struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method    string    `gorm:"size:50;not null" json:"method"`
	Account   string    `gorm:"size:100;not null" json:"account"`
	BankName  string    `gorm:"size:100" json:"bank_name,omitempty"`
	Status    string    `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (WithdrawRequest) TableName() string {
	return "withdraw_requests"
}

// PromotionRequest Spotlight 推广申请，下单即扣费，驳回走补偿退款
type PromotionRequest struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	PostID       int64     `gorm:"not null;index" json:"post_id"`
	DurationDays int       `gorm:"not null" json:"duration_days"`
	Cost         float64   `gorm:"type:decimal(20,4);not null" json:"cost"`
	Status       string    `gorm:"size:20;default:pending;index" json:"status"`
	// 待审批时等于 PostID，审批后清空。唯一索引保证并发下单时
	// 同一帖子最多一个待审批单（NULL 不参与唯一性判定）
	PendingPost *int64 `gorm:"uniqueIndex" json:"-"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// 关联
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

func (PromotionRequest) TableName() string {
	return "promotion_requests"
}

// Report 内容举报
type Report struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PostID     int64     `gorm:"not null;index" json:"post_id"`
	ReporterID int64     `gorm:"not null;index" json:"reporter_id"`
	Reason     string    `gorm:"size:200;not null" json:"reason"`
	Status     string    `gorm:"size:20;default:pending;index" json:"status"` // pending, resolved
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// 关联
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}

// Setting 平台运行时配置（如浏览分成 rate）
type Setting struct {
	Key       string    `gorm:"primaryKey;size:50" json:"key"`
	Value     string    `gorm:"size:200;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

const SettingViewRate = "view_rate"
