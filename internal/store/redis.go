package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/addkelime/kelime-server/internal/game"
)

// Redis keeps snapshots as JSON under session:<id>, refreshing the TTL on every save.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func (s *Redis) key(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *Redis) Save(ctx context.Context, snap game.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(snap.ID), b, s.ttl).Err()
}

func (s *Redis) Get(ctx context.Context, id string) (game.Snapshot, error) {
	val, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return game.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return game.Snapshot{}, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return game.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
