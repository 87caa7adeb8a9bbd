package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces client hashes in a shared Redis.
const redisKeyPrefix = "storefront:local:"

// Redis is a Backend storing each client's items in one Redis hash. The
// hash expires after ttl without reads or writes, so abandoned browsers do
// not accumulate forever.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis backend. A zero ttl keeps hashes forever.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Scope returns the namespace for clientID.
func (r *Redis) Scope(clientID string) Storage {
	return &redisScope{r: r, key: redisKeyPrefix + clientID}
}

type redisScope struct {
	r   *Redis
	key string
}

// GetItem also slides the hash's expiry, so a client that keeps
// visiting is not cut off ttl after its last write.
func (s *redisScope) GetItem(ctx context.Context, key string) (string, error) {
	pipe := s.r.client.TxPipeline()
	get := pipe.HGet(ctx, s.key, key)
	if s.r.ttl > 0 {
		pipe.Expire(ctx, s.key, s.r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("reading %s from redis: %w", key, err)
	}

	val, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s from redis: %w", key, err)
	}
	return val, nil
}

func (s *redisScope) SetItem(ctx context.Context, key, value string) error {
	pipe := s.r.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	if s.r.ttl > 0 {
		pipe.Expire(ctx, s.key, s.r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing %s to redis: %w", key, err)
	}
	return nil
}

func (s *redisScope) RemoveItem(ctx context.Context, key string) error {
	if err := s.r.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("removing %s from redis: %w", key, err)
	}
	return nil
}

var _ Backend = (*Redis)(nil)
