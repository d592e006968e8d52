package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyTTL = 24 * time.Hour

// RedisAdapter backs request idempotency for order submission. It is an
// optional dependency; services treat a nil cache as idempotency disabled.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// SetIdempotency claims key atomically. Returns false when the key is already
// held, meaning the same request was seen before.
func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
}

// ReleaseIdempotency frees a claimed key so a failed request can be retried
// under the same id.
func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
