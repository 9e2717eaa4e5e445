// Package cache mirrors the current refresh token per user in Redis.
// The mirror is a best-effort accelerator: the relational store stays
// authoritative, and every operation here absorbs its own errors.  A
// cache outage must never fail a login or refresh.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds every cache round trip so a hung Redis cannot delay
// the primary flow.
const opTimeout = 500 * time.Millisecond

// keyPrefix namespaces mirror entries: refresh_token:{userId}.
const keyPrefix = "refresh_token:"

// TokenCache wraps a Redis client.  A nil client is valid and turns
// every operation into a no-op, matching how the Redis constructor
// degrades when the server is unreachable at startup.
type TokenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTokenCache builds a mirror whose entries live exactly as long as
// the refresh tokens they shadow.
func NewTokenCache(rdb *redis.Client, ttl time.Duration) *TokenCache {
	return &TokenCache{rdb: rdb, ttl: ttl}
}

// SetRefreshToken records the user's latest refresh token.  Failures
// are logged and swallowed.
func (c *TokenCache) SetRefreshToken(ctx context.Context, userID, token string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.rdb.Set(ctx, keyPrefix+userID, token, c.ttl).Err(); err != nil {
		log.Printf("cache: set refresh token for user %s failed: %v", userID, err)
	}
}

// GetRefreshToken returns the mirrored token when present.  Absence and
// errors look the same to the caller: no value.  The mirror is never
// consulted to authorize a refresh.
func (c *TokenCache) GetRefreshToken(ctx context.Context, userID string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	v, err := c.rdb.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get refresh token for user %s failed: %v", userID, err)
		}
		return "", false
	}
	return v, true
}

// DeleteRefreshToken drops the mirror entry on logout/revocation.
// Failures are logged and swallowed.
func (c *TokenCache) DeleteRefreshToken(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.rdb.Del(ctx, keyPrefix+userID).Err(); err != nil {
		log.Printf("cache: delete refresh token for user %s failed: %v", userID, err)
	}
}
