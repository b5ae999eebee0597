package storage

import (
	"context"
	"errors"
	"strings"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisStore backs the flat key-value store with Redis. Entries are written
// without a Redis-side TTL; expiry is owned by the cache layer so that stale
// entries can be detected and lazily deleted on read.
type RedisStore struct {
	client *redisv9.Client
}

// NewRedisStore creates a store talking to the Redis instance at addr.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redisv9.NewClient(&redisv9.Options{Addr: addr}),
	}
}

// NewRedisStoreWithClient wraps an existing client. Used by tests that point
// at a miniredis instance.
func NewRedisStoreWithClient(client *redisv9.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, key, value, 0).Err()
	if err != nil && isOOMError(err) {
		return ErrStoreFull
	}
	return err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

// Close releases the underlying client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// isOOMError detects Redis maxmemory rejections ("OOM command not allowed
// when used memory > 'maxmemory'").
func isOOMError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "OOM")
}

var _ Store = (*RedisStore)(nil)
