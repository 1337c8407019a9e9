package services

import (
	"context"
	"testing"
	"time"
)

func TestCallbackStoreSaveTake(t *testing.T) {
	store := NewCallbackStoreService(nil, time.Minute, testLogger())
	ctx := context.Background()

	if err := store.Save(ctx, "https://x.com.br/1", `{"ok":true}`); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	payload, ok := store.Take(ctx, "https://x.com.br/1")
	if !ok {
		t.Fatal("Take() after Save() returned ok=false")
	}
	if payload != `{"ok":true}` {
		t.Errorf("Take() = %q, expected stored payload", payload)
	}
}

func TestCallbackStoreTakeIsDestructive(t *testing.T) {
	store := NewCallbackStoreService(nil, time.Minute, testLogger())
	ctx := context.Background()

	_ = store.Save(ctx, "https://x.com.br/1", `{"ok":true}`)

	if _, ok := store.Take(ctx, "https://x.com.br/1"); !ok {
		t.Fatal("first Take() returned ok=false")
	}
	if _, ok := store.Take(ctx, "https://x.com.br/1"); ok {
		t.Error("second Take() returned ok=true, payloads must be delivered at most once")
	}
}

func TestCallbackStoreTakeMissing(t *testing.T) {
	store := NewCallbackStoreService(nil, time.Minute, testLogger())

	if _, ok := store.Take(context.Background(), "https://x.com.br/nunca"); ok {
		t.Error("Take() on a URL never saved returned ok=true")
	}
}

func TestCallbackStoreExpiry(t *testing.T) {
	store := NewCallbackStoreService(nil, 10*time.Millisecond, testLogger())
	ctx := context.Background()

	_ = store.Save(ctx, "https://x.com.br/1", `{"ok":true}`)

	time.Sleep(25 * time.Millisecond)

	if _, ok := store.Take(ctx, "https://x.com.br/1"); ok {
		t.Error("Take() after TTL elapsed returned ok=true")
	}
}

func TestCallbackStoreSaveOverwrites(t *testing.T) {
	store := NewCallbackStoreService(nil, time.Minute, testLogger())
	ctx := context.Background()

	_ = store.Save(ctx, "https://x.com.br/1", `{"versao":1}`)
	_ = store.Save(ctx, "https://x.com.br/1", `{"versao":2}`)

	payload, ok := store.Take(ctx, "https://x.com.br/1")
	if !ok || payload != `{"versao":2}` {
		t.Errorf("Take() = (%q, %v), expected the later payload to win", payload, ok)
	}
}

func TestCallbackStoreKeysAreIndependent(t *testing.T) {
	store := NewCallbackStoreService(nil, time.Minute, testLogger())
	ctx := context.Background()

	_ = store.Save(ctx, "https://x.com.br/1", `{"id":1}`)
	_ = store.Save(ctx, "https://x.com.br/2", `{"id":2}`)

	if _, ok := store.Take(ctx, "https://x.com.br/1"); !ok {
		t.Error("Take() on the first URL failed")
	}
	if _, ok := store.Take(ctx, "https://x.com.br/2"); !ok {
		t.Error("taking one URL must not consume another")
	}
}
