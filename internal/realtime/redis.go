package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Channel is the redis pub/sub channel scores travel on.
const Channel = "kelime:scores"

// RedisBridge publishes scores through redis so every server instance's hub
// receives them, including the one that published.
type RedisBridge struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisBridge(rdb *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{rdb: rdb, hub: hub}
}

func (b *RedisBridge) Publish(ctx context.Context, s Score) error {
	msg, err := EncodeScore(s)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, Channel, msg).Err()
}

// Run forwards channel messages to the local hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	log.Info().Str("channel", Channel).Msg("score feed subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			b.hub.Broadcast([]byte(m.Payload))
		}
	}
}
