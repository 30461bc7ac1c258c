package cache

import (
	"context"
	"errors"
	"time"

	redis "github.com/go-redis/redis/v8"

	"github.com/protsenkopavel/CryptoBridge/internal/logger"
)

// RedisStore implements Store on top of a shared Redis connection.
type RedisStore struct {
	client *redis.Client
	logger logger.LoggerInterface
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Store backed by the given Redis instance.
func NewRedisStore(addr, password string, db int, log logger.LoggerInterface) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, logger: log}
}

// Client exposes the underlying connection for non-cache uses (pub/sub).
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// Backend trouble degrades to a miss, the caller re-fetches.
			s.logger.Warn(ctx, "redis get failed, treating as miss", "key", key, "error", err)
		}
		return nil, ErrMiss
	}
	return raw, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn(ctx, "redis set failed", "key", key, "error", err)
		return err
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
