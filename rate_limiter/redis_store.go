package rate_limiter

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// ensure that RedisStore satisfies the Store interface
var _ Store = &RedisStore{}

// RedisStore persists submission logs in Redis, for deployments where the
// limit is checked server-side across many clients. Every write refreshes a
// TTL slightly longer than the rolling window, so logs of clients that never
// return still age out of Redis without a pruning visit.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    Window + 5*time.Minute,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}
