package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenCache(rdb, time.Hour), mr
}

func TestSetRefreshTokenMirrorsValueWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetRefreshToken(ctx, "user-1", "signed-token")

	v, err := mr.Get("refresh_token:user-1")
	if err != nil {
		t.Fatalf("mirror entry missing: %v", err)
	}
	if v != "signed-token" {
		t.Fatalf("expected mirrored token, got %q", v)
	}
	if ttl := mr.TTL("refresh_token:user-1"); ttl != time.Hour {
		t.Fatalf("expected TTL %v, got %v", time.Hour, ttl)
	}
}

func TestGetRefreshToken(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	if _, ok := c.GetRefreshToken(ctx, "user-1"); ok {
		t.Fatal("expected miss for absent entry")
	}

	c.SetRefreshToken(ctx, "user-1", "signed-token")
	v, ok := c.GetRefreshToken(ctx, "user-1")
	if !ok || v != "signed-token" {
		t.Fatalf("expected hit with mirrored token, got %q ok=%v", v, ok)
	}
}

func TestDeleteRefreshToken(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.SetRefreshToken(ctx, "user-1", "signed-token")
	c.DeleteRefreshToken(ctx, "user-1")

	if mr.Exists("refresh_token:user-1") {
		t.Fatal("mirror entry should be gone after delete")
	}
	// Deleting again is harmless.
	c.DeleteRefreshToken(ctx, "user-1")
}

func TestNilClientIsNoop(t *testing.T) {
	c := NewTokenCache(nil, time.Hour)
	ctx := context.Background()

	c.SetRefreshToken(ctx, "user-1", "signed-token")
	c.DeleteRefreshToken(ctx, "user-1")
	if _, ok := c.GetRefreshToken(ctx, "user-1"); ok {
		t.Fatal("nil-client cache must always miss")
	}
}

// A dead Redis must be absorbed: no panic, no error surfaced.
func TestCacheOutageIsAbsorbed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	c := NewTokenCache(rdb, time.Hour)
	mr.Close()

	ctx := context.Background()
	c.SetRefreshToken(ctx, "user-1", "signed-token")
	c.DeleteRefreshToken(ctx, "user-1")
	if _, ok := c.GetRefreshToken(ctx, "user-1"); ok {
		t.Fatal("expected miss when the cache is down")
	}
}
