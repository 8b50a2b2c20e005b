package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletEvent_JSON(t *testing.T) {
	event := &WalletEvent{
		Type:     EventGiftReceived,
		UserID:   1,
		Amount:   80,
		Balance:  180,
		TxType:   "gift_received",
		PostID:   2,
		GiftName: "Gold",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]interface{}
	err = json.Unmarshal(data, &raw)
	require.NoError(t, err)

	assert.Contains(t, raw, "user_id")
	assert.Contains(t, raw, "post_id")
	assert.Contains(t, raw, "gift_name")

	var decoded WalletEvent
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, event.UserID, decoded.UserID)
	assert.Equal(t, event.Amount, decoded.Amount)
	assert.Equal(t, event.GiftName, decoded.GiftName)
}

func TestWalletEvent_OmitEmpty(t *testing.T) {
	event := &WalletEvent{
		Type:   EventBalanceChanged,
		UserID: 1,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var raw map[string]interface{}
	err = json.Unmarshal(data, &raw)
	require.NoError(t, err)

	_, hasGift := raw["gift_name"]
	_, hasMessage := raw["message"]
	assert.False(t, hasGift, "empty gift_name should be omitted")
	assert.False(t, hasMessage, "empty message should be omitted")
}

// Integration test with real Redis (skip if not available)
func TestPublisherSubscriber_Integration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	defer client.Close()

	publisher := NewPublisher(client)
	subscriber := NewSubscriber(client)

	testCtx, testCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer testCancel()

	received := make(chan *WalletEvent, 1)

	go func() {
		subscriber.Subscribe(testCtx, func(event *WalletEvent) {
			received <- event
		})
	}()

	// 等订阅建立
	time.Sleep(100 * time.Millisecond)

	event := &WalletEvent{
		Type:    EventBalanceChanged,
		UserID:  123,
		Amount:  50,
		Balance: 150,
		TxType:  "topup",
	}

	err := publisher.PublishWalletEvent(testCtx, event)
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, event.UserID, got.UserID)
		assert.Equal(t, event.Amount, got.Amount)
		assert.Equal(t, event.Balance, got.Balance)
		assert.Equal(t, EventBalanceChanged, got.Type)
	case <-testCtx.Done():
		t.Fatal("Timeout waiting for event")
	}
}

func TestNewPublisher(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	defer client.Close()

	publisher := NewPublisher(client)
	assert.NotNil(t, publisher)
}

func TestNewSubscriber(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
	})
	defer client.Close()

	subscriber := NewSubscriber(client)
	assert.NotNil(t, subscriber)
}
