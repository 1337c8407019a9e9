package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCacheSetGet(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())
	ctx := context.Background()

	if err := cache.Set(ctx, "imovel:https://a.com.br/1", `{"ok":true}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, ok := cache.Get(ctx, "imovel:https://a.com.br/1")
	if !ok {
		t.Fatal("Get() after Set() returned ok=false")
	}
	if got != `{"ok":true}` {
		t.Errorf("Get() = %q, expected stored value", got)
	}
}

func TestCacheGetMissing(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())

	if _, ok := cache.Get(context.Background(), "absent"); ok {
		t.Error("Get() on an absent key returned ok=true")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCacheService(nil, 10*time.Millisecond, testLogger())
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Get() after TTL elapsed returned ok=true, expected eviction")
	}
}

func TestCacheRawKeysAreDistinct(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())
	ctx := context.Background()

	// Keys are the raw submitted URL, never canonicalized: a trailing slash
	// makes a different entry.
	if err := cache.Set(ctx, "imovel:http://x.com.br/a", "sem barra"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	if _, ok := cache.Get(ctx, "imovel:http://x.com.br/a/"); ok {
		t.Error("Get() with a trailing slash hit the entry stored without one")
	}
}

func TestCacheDelete(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())
	ctx := context.Background()

	if err := cache.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Get() after Delete() returned ok=true")
	}

	// Deleting an absent key is a no-op.
	if err := cache.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() on an absent key returned error: %v", err)
	}
}

func TestCacheClear(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())
	ctx := context.Background()

	_ = cache.Set(ctx, "a", "1")
	_ = cache.Set(ctx, "b", "2")

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	if _, ok := cache.Get(ctx, "a"); ok {
		t.Error("Get(a) after Clear() returned ok=true")
	}
	if _, ok := cache.Get(ctx, "b"); ok {
		t.Error("Get(b) after Clear() returned ok=true")
	}
}

func TestCacheCleanupEvictsExpiredOnly(t *testing.T) {
	cache := NewCacheService(nil, 10*time.Millisecond, testLogger())
	ctx := context.Background()

	_ = cache.Set(ctx, "old", "1")
	time.Sleep(25 * time.Millisecond)
	_ = cache.Set(ctx, "fresh", "2")

	cache.Cleanup()

	if _, ok := cache.Get(ctx, "old"); ok {
		t.Error("Cleanup() kept an expired entry")
	}
	if _, ok := cache.Get(ctx, "fresh"); !ok {
		t.Error("Cleanup() evicted a live entry")
	}
}

func TestCacheSetOverwrites(t *testing.T) {
	cache := NewCacheService(nil, time.Hour, testLogger())
	ctx := context.Background()

	_ = cache.Set(ctx, "k", "first")
	_ = cache.Set(ctx, "k", "second")

	got, ok := cache.Get(ctx, "k")
	if !ok || got != "second" {
		t.Errorf("Get() after overwrite = (%q, %v), expected (\"second\", true)", got, ok)
	}
}
