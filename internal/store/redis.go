package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/burakorkmez/debate-settled/internal/models"
)

// RedisStore handles Redis operations: supporter counters plus the raw
// client used by the send quota and the API rate limiter.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Client exposes the underlying Redis client for the quota and rate
// limiting layers.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// supporterKey returns the key for a side's running message counter.
func supporterKey(side models.Side) string {
	return fmt.Sprintf("supporters:%s", side)
}

// IncrementSupporterCount bumps the running counter for a side.
func (s *RedisStore) IncrementSupporterCount(ctx context.Context, side models.Side) error {
	return s.client.Incr(ctx, supporterKey(side)).Err()
}

// SupporterCount reads the running counter for a side. The second return
// is false when the counter has never been primed.
func (s *RedisStore) SupporterCount(ctx context.Context, side models.Side) (int64, bool, error) {
	count, err := s.client.Get(ctx, supporterKey(side)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return count, true, nil
}

// PrimeSupporterCount seeds a side's counter from a durable-store scan.
// SETNX so a concurrent send that already incremented is not clobbered.
func (s *RedisStore) PrimeSupporterCount(ctx context.Context, side models.Side, count int64) error {
	return s.client.SetNX(ctx, supporterKey(side), count, 0).Err()
}
