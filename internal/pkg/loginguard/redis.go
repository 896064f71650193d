package loginguard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisGuard keeps counters in Redis so every server instance shares them.
// The window starts at the first failure and is not extended by later ones.
type RedisGuard struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewRedisGuard creates a guard backed by client
func NewRedisGuard(client *redis.Client, maxAttempts int, window time.Duration) *RedisGuard {
	return &RedisGuard{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}
}

// Allowed implements Guard
func (g *RedisGuard) Allowed(ctx context.Context, key string) (bool, error) {
	n, err := g.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read login counter: %w", err)
	}
	return n < g.maxAttempts, nil
}

// Fail implements Guard. The counter is created with its expiry and
// incremented in one MULTI, so it never exists without a TTL.
func (g *RedisGuard) Fail(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, g.window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment login counter: %w", err)
	}
	return incr.Val(), nil
}

// Reset implements Guard
func (g *RedisGuard) Reset(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to reset login counter: %w", err)
	}
	return nil
}

// NewRedisClient connects to addr and verifies the connection with PING
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}
