package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 流水类型
const (
	TxTopUp           = "topup"
	TxWithdraw        = "withdraw"
	TxGiftSent        = "gift_sent"
	TxGiftReceived    = "gift_received"
	TxView            = "view"
	TxPromotion       = "promotion"
	TxPromotionRefund = "promotion_refund"
	TxAdjustment      = "adjustment"
)

// 流水状态
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusRejected  = "rejected"
)

// JSONMap 用于 JSON 对象字段
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, sok := value.(string); sok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, m)
}

// WalletTransaction 积分流水（追加写账本，余额变更与流水同一事务落库）
type WalletTransaction struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	UserID         int64     `gorm:"not null;index" json:"user_id"`
	Type           string    `gorm:"size:30;not null;index" json:"type"`
	Amount         float64   `gorm:"type:decimal(20,4);not null" json:"amount"` // 有符号增量
	BalanceAfter   float64   `gorm:"type:decimal(20,4)" json:"balance_after"`
	Status         string    `gorm:"size:20;default:pending;index" json:"status"`
	IdempotencyKey string    `gorm:"size:100;uniqueIndex;not null" json:"idempotency_key"`
	TransferID     string    `gorm:"size:64;index" json:"transfer_id,omitempty"` // 礼物转账两条流水共用
	PostID         *int64    `gorm:"index" json:"post_id,omitempty"`
	Metadata       JSONMap   `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// ViewEvent 计费浏览去重记录，(post_id, viewer_id) 唯一
type ViewEvent struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	PostID    int64     `gorm:"not null;uniqueIndex:uk_post_viewer" json:"post_id"`
	ViewerID  int64     `gorm:"not null;uniqueIndex:uk_post_viewer" json:"viewer_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ViewEvent) TableName() string {
	return "view_events"
}
