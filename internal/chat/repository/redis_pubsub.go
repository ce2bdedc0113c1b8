package repository

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"blog_chat_service/internal/chat/domain"
	"blog_chat_service/pkg/logger"
)

// PubSub is the broadcast fabric contract the chat session depends on.
// Delivery reaches every current subscriber of the group, the publisher
// included; events published to the same group arrive in order.
type PubSub interface {
	Publish(ctx context.Context, group string, event domain.ChatEvent) error
	// Subscribe fans group events into handler until ctx is cancelled.
	Subscribe(ctx context.Context, group string, handler func(event domain.ChatEvent)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// Publish serializes the event and publishes it on the group channel.
func (r *RedisPubSub) Publish(ctx context.Context, group string, event domain.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, group, data).Err()
}

// Subscribe subscribes the group channel and delivers decoded events to
// handler from a dedicated goroutine. Cancelling ctx closes the
// subscription.
func (r *RedisPubSub) Subscribe(ctx context.Context, group string, handler func(event domain.ChatEvent)) error {
	sub := r.client.Subscribe(ctx, group)
	go func() {
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				var event domain.ChatEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					logger.Log.Error("pubsub payload decode failed",
						zap.String("group", group), zap.Error(err))
					continue
				}
				handler(event)
			case <-ctx.Done():
				logger.Log.Info("pubsub subscription closed", zap.String("group", group))
				sub.Close()
				return
			}
		}
	}()
	return nil
}
