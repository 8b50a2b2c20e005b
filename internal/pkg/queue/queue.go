package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ViewMessage 浏览事件消息，由 API 入队、worker 消费结算。
// 处理失败时带着重试计数回到队列，结算侧幂等，重复消费安全。
type ViewMessage struct {
	PostID   int64 `json:"post_id"`
	AuthorID int64 `json:"author_id"`
	ViewerID int64 `json:"viewer_id"`
	Retries  int   `json:"retries,omitempty"`
}

type Queue struct {
	client    *redis.Client
	queueName string
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push 将浏览事件加入队列
func (q *Queue) Push(ctx context.Context, msg *ViewMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop 从队列获取浏览事件（阻塞）
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*ViewMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // 超时，无任务
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg ViewMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// Length 获取队列长度
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
