// Package cache provides a small TTL cache used for login rate limiting and
// request idempotency windows.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider defines the interface for TTL'd key/value storage.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrNotFound = errors.New("key not found")

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

// RateLimitKey builds the cache key for a login rate-limit window, scoped to
// both the claimed identity and the caller's IP.
func RateLimitKey(scope, identity, ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", scope, identity, ip)
}
