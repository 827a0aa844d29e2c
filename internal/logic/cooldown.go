package logic

import (
	"context"
	"fmt"
	"time"
)

// Gate hands out short-lived exclusive keys.
type Gate interface {
	// Acquire returns false when the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisGate implements Gate with SETNX.
type RedisGate struct {
	client RedisClient
	prefix string
}

func NewRedisGate(client RedisClient, prefix string) *RedisGate {
	return &RedisGate{client: client, prefix: prefix}
}

func (g *RedisGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return true, nil
	}
	ok, err := g.client.SetNX(ctx, g.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGate) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// NopGate always grants. Used when Redis is not configured.
type NopGate struct{}

func (NopGate) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (NopGate) Release(context.Context, string) error                        { return nil }
