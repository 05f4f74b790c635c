package redis

import (
	"context"
	"encoding/json"

	"Campus_Portal/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ChatBus 通过 pub/sub 在多个 API 实例之间广播聊天消息
type ChatBus struct {
	RDB     *redis.Client
	Channel string
}

func (b *ChatBus) Publish(ctx context.Context, msg model.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.RDB.Publish(ctx, b.Channel, data).Err()
}

// Subscribe 返回的通道在 ctx 结束后关闭
func (b *ChatBus) Subscribe(ctx context.Context) (<-chan model.ChatMessage, error) {
	pubsub := b.RDB.Subscribe(ctx, b.Channel)
	// 等待订阅确认，保证返回后发布的消息不会丢
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan model.ChatMessage, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg model.ChatMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					logrus.WithError(err).Warn("chat bus: drop malformed payload")
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
