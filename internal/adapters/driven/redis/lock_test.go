package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestLock_OwnerID_Unique(t *testing.T) {
	client, _ := setupTestRedis(t)

	a, b := NewLock(client), NewLock(client)
	if a.OwnerID() == "" || a.OwnerID() == b.OwnerID() {
		t.Errorf("expected unique non-empty owner IDs, got %q and %q", a.OwnerID(), b.OwnerID())
	}
}

func TestLock_AcquireRelease(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	lock := NewLock(client)

	ok, err := lock.Acquire(ctx, "credential-refresh:user-1", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected to acquire, got %v %v", ok, err)
	}

	value, _ := mr.Get(lockPrefix + "credential-refresh:user-1")
	if value != lock.OwnerID() {
		t.Errorf("expected owner ID stored, got %q", value)
	}
	if ttl := mr.TTL(lockPrefix + "credential-refresh:user-1"); ttl != 30*time.Second {
		t.Errorf("expected 30s TTL, got %v", ttl)
	}

	ok, _ = lock.Acquire(ctx, "credential-refresh:user-1", 30*time.Second)
	if ok {
		t.Error("lock is not reentrant")
	}

	if err := lock.Release(ctx, "credential-refresh:user-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if mr.Exists(lockPrefix + "credential-refresh:user-1") {
		t.Error("expected key deleted after release")
	}
}

func TestLock_OtherInstanceBlocked(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	a, b := NewLock(client), NewLock(client)

	if ok, _ := a.Acquire(ctx, "job", time.Minute); !ok {
		t.Fatal("a should acquire")
	}
	if ok, _ := b.Acquire(ctx, "job", time.Minute); ok {
		t.Fatal("b must not acquire a held lock")
	}

	if err := b.Release(ctx, "job"); err != nil {
		t.Fatalf("release by non-owner should not error: %v", err)
	}
	if !mr.Exists(lockPrefix + "job") {
		t.Error("non-owner release must not delete the lock")
	}

	if err := b.Extend(ctx, "job", time.Minute); !errors.Is(err, ErrLockNotHeld) {
		t.Errorf("expected ErrLockNotHeld, got %v", err)
	}
}

func TestLock_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	a, b := NewLock(client), NewLock(client)

	_, _ = a.Acquire(ctx, "job", time.Second)
	mr.FastForward(2 * time.Second)

	if ok, _ := b.Acquire(ctx, "job", time.Second); !ok {
		t.Error("expected lock free after TTL")
	}
}

func TestLock_Extend(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()
	lock := NewLock(client)

	_, _ = lock.Acquire(ctx, "job", time.Second)
	if err := lock.Extend(ctx, "job", time.Minute); err != nil {
		t.Fatalf("extend: %v", err)
	}
	if ttl := mr.TTL(lockPrefix + "job"); ttl != time.Minute {
		t.Errorf("expected 1m TTL after extend, got %v", ttl)
	}
}

func TestLock_Ping(t *testing.T) {
	client, _ := setupTestRedis(t)
	if err := NewLock(client).Ping(context.Background()); err != nil {
		t.Errorf("expected healthy ping, got %v", err)
	}

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer down.Close()
	if err := NewLock(down).Ping(context.Background()); err == nil {
		t.Error("expected ping error for unreachable redis")
	}
}

func TestConnect(t *testing.T) {
	_, mr := setupTestRedis(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	client.Close()

	if _, err := Connect(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid url")
	}
}
