package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/dojoauth/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T, cfg Config) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := New(rdb, cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestSaveLoadRemoveIdempotent(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, Config{Prefix: "test", Name: "alice"})
	defer done()
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Save(ctx, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("test:alice") {
		t.Fatalf("expected key %q to exist", "test:alice")
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("unexpected payload %q", got)
	}

	if err := store.Remove(ctx); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if err := store.Remove(ctx); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestTTLAndSlidingExpiry(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, Config{Name: "bob", TTL: time.Minute, Sliding: true})
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	mr.FastForward(50 * time.Second)

	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("load within ttl: %v", err)
	}
	mr.FastForward(50 * time.Second)
	if _, err := store.Load(ctx); err != nil {
		t.Fatalf("sliding load should have extended ttl: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestUnavailableRedisIsWrapped(t *testing.T) {
	store, mr, done := newRedisStoreTest(t, Config{})
	defer done()
	mr.Close()

	ctx := context.Background()
	if _, err := store.Load(ctx); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on load, got %v", err)
	}
	if err := store.Save(ctx, []byte("x")); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on save, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("expected nil client to be rejected")
	}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	if _, err := New(rdb, Config{Sliding: true}); err == nil {
		t.Fatal("expected sliding without ttl to be rejected")
	}
	if _, err := New(rdb, Config{TTL: -time.Second}); err == nil {
		t.Fatal("expected negative ttl to be rejected")
	}
}
