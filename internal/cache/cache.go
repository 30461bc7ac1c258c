// Package cache provides a TTL key-value store used for quote and
// trading-info caching. Lookups never fail hard: a backend error is
// reported as a miss so callers degrade to a direct fetch.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss is returned when a key is absent, expired, or the backend is
// unreachable.
var ErrMiss = errors.New("cache: miss")

// Store is the TTL key-value contract shared by the Redis and in-memory
// implementations.
type Store interface {
	// Get returns the raw value for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. Errors are advisory;
	// callers may ignore them.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping reports backend reachability.
	Ping(ctx context.Context) error

	Close() error
}

// GetJSON reads key from s and unmarshals it into dest. Decode failures
// count as misses so a stale or corrupt entry never poisons a caller.
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return ErrMiss
	}
	return nil
}

// SetJSON marshals value and stores it under key with the given TTL.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, raw, ttl)
}
