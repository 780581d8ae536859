// internal/transport/registry_redis.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisPrefix = "rmcs:peer:"
	DefaultClaimTTL    = 24 * time.Hour
)

// RedisRegistry shares claims between machines through Redis. A claim is a
// SETNX with a TTL so an abandoned room frees its code eventually.
type RedisRegistry struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry wraps an already connected client. Zero ttl uses DefaultClaimTTL.
func NewRedisRegistry(rdb redis.Cmdable, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = DefaultClaimTTL
	}
	return &RedisRegistry{rdb: rdb, prefix: DefaultRedisPrefix, ttl: ttl}
}

func (r *RedisRegistry) key(id string) string {
	return r.prefix + id
}

func (r *RedisRegistry) Claim(ctx context.Context, id, addr string) error {
	ok, err := r.rdb.SetNX(ctx, r.key(id), addr, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to claim %s in redis: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrAddressInUse, id)
	}
	return nil
}

func (r *RedisRegistry) Resolve(ctx context.Context, id string) (string, error) {
	addr, err := r.rdb.Get(ctx, r.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrPeerNotFound, id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s in redis: %w", id, err)
	}
	return addr, nil
}

func (r *RedisRegistry) Release(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to release %s in redis: %w", id, err)
	}
	return nil
}
