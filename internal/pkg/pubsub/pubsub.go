package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelWalletEvents = "wallet_events"
)

// 钱包事件类型
const (
	EventBalanceChanged = "balance_changed"
	EventGiftReceived   = "gift_received"
	EventRequestDecided = "request_decided"
)

// WalletEvent 钱包事件消息，server 订阅后经 WebSocket 推送给用户
type WalletEvent struct {
	Type     string  `json:"type"`
	UserID   int64   `json:"user_id"`
	Amount   float64 `json:"amount,omitempty"`
	Balance  float64 `json:"balance,omitempty"`
	TxType   string  `json:"tx_type,omitempty"`
	PostID   int64   `json:"post_id,omitempty"`
	GiftName string  `json:"gift_name,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishWalletEvent 发布钱包事件
func (p *Publisher) PublishWalletEvent(ctx context.Context, event *WalletEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet event: %w", err)
	}

	return p.client.Publish(ctx, ChannelWalletEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅钱包事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*WalletEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelWalletEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event WalletEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
