// ABOUTME: Redis-backed lookup cache for deployments that already run redis.
// ABOUTME: Stores JSON term lists under a key prefix with a native TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "medtrack:lookup:"

// Redis is a Store on top of a go-redis client.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr.
func NewRedis(addr string, ttl time.Duration) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis cache requires an address")
	}
	return NewRedisWithClient(redis.NewClient(&redis.Options{Addr: addr}), ttl), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached terms: %w", err)
	}
	var terms []string
	if err := json.Unmarshal(raw, &terms); err != nil {
		return nil, false, fmt.Errorf("decode cached terms: %w", err)
	}
	return terms, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, terms []string) error {
	raw, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("encode terms: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set cached terms: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
