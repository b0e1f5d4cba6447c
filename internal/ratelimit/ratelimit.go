// Package ratelimit implements a fixed-window login rate limiter backed by
// the cache provider, keyed by identity+IP with an explicit TTL so state
// survives in a shared cache across instances.
package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/canvistapp/canvist/internal/cache"
)

// Limiter counts attempts per key in a fixed window and blocks once the
// window's budget is exhausted.
type Limiter struct {
	cache       cache.Provider
	scope       string
	maxAttempts int
	window      time.Duration
	block       time.Duration
}

// Result reports whether an attempt is allowed and, when blocked, how long
// the caller should wait before retrying.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

func New(provider cache.Provider, scope string, maxAttempts int, window, block time.Duration) *Limiter {
	return &Limiter{
		cache:       provider,
		scope:       scope,
		maxAttempts: maxAttempts,
		window:      window,
		block:       block,
	}
}

// Attempt records one attempt for the identity+IP pair and reports whether it
// is allowed. Errors from the cache fail open: an unavailable limiter must not
// lock every caller out.
func (l *Limiter) Attempt(ctx context.Context, identity, ip string) (Result, error) {
	key := cache.RateLimitKey(l.scope, identity, ip)
	blockKey := key + ":blocked"

	if _, err := l.cache.Get(ctx, blockKey); err == nil {
		return Result{Allowed: false, RetryAfter: l.block}, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		return Result{Allowed: true}, err
	}

	count := 0
	if raw, err := l.cache.Get(ctx, key); err == nil {
		count, _ = strconv.Atoi(raw)
	} else if !errors.Is(err, cache.ErrNotFound) {
		return Result{Allowed: true}, err
	}

	count++
	if count > l.maxAttempts {
		if err := l.cache.Set(ctx, blockKey, "1", l.block); err != nil {
			return Result{Allowed: true}, err
		}
		return Result{Allowed: false, RetryAfter: l.block}, nil
	}

	if err := l.cache.Set(ctx, key, strconv.Itoa(count), l.window); err != nil {
		return Result{Allowed: true}, err
	}
	return Result{Allowed: true}, nil
}

// Reset clears the window after a successful authentication.
func (l *Limiter) Reset(ctx context.Context, identity, ip string) {
	key := cache.RateLimitKey(l.scope, identity, ip)
	_ = l.cache.Delete(ctx, key)
	_ = l.cache.Delete(ctx, key+":blocked")
}
