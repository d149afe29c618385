package registry

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "iam:rt:"

// RedisRegistry implements Registry on a shared Redis client. Entries are
// written with a TTL matching the refresh-token lifetime so tokens that
// expire without ever being rotated do not leave slots behind.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis builds a registry on an injected client. The caller owns the
// client's lifecycle; Close here is a no-op so the client can be shared
// with other Redis-backed components.
func NewRedis(rdb *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: ttl}
}

func (r *RedisRegistry) Insert(ctx context.Context, subjectID, tokenID string) error {
	return r.rdb.Set(ctx, keyPrefix+subjectID, tokenID, r.ttl).Err()
}

func (r *RedisRegistry) Validate(ctx context.Context, subjectID, tokenID string) (bool, error) {
	stored, err := r.rdb.Get(ctx, keyPrefix+subjectID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return stored == tokenID, nil
}

func (r *RedisRegistry) Invalidate(ctx context.Context, subjectID string) error {
	return r.rdb.Del(ctx, keyPrefix+subjectID).Err()
}

func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisRegistry) Close() error { return nil }
