package lock

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Redis serializes keys across instances using redislock. The TTL bounds
// how long a crashed holder can block a key; scans finish in milliseconds,
// so contenders retry on a short linear backoff instead of failing fast.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedis wraps an existing redis client.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{client: redislock.New(client), ttl: ttl}
}

// Acquire obtains the distributed lock for key.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	l, err := r.client.Obtain(ctx, key, r.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(25*time.Millisecond), 200),
	})
	if err != nil {
		return nil, err
	}
	return func() {
		// Release on a fresh context: the request context may already be
		// canceled and the lock must still be freed.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.Release(releaseCtx)
	}, nil
}
