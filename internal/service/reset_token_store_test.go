package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockResetKVClient struct {
	lastSetKey    string
	lastSetVal    interface{}
	lastSetTTL    time.Duration
	lastGetDelKey string

	getDelVal string
	getDelErr error
}

func (m *mockResetKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockResetKVClient) GetDel(ctx context.Context, key string) *redis.StringCmd {
	m.lastGetDelKey = key
	cmd := redis.NewStringCmd(ctx)
	if m.getDelErr != nil {
		cmd.SetErr(m.getDelErr)
		return cmd
	}
	cmd.SetVal(m.getDelVal)
	return cmd
}

func TestMemoryResetTokenStore_ConsumeOnce(t *testing.T) {
	store := NewMemoryResetTokenStore()

	if err := store.Store("tok-1", "u1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	userID, err := store.Consume("tok-1")
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1,nil; got %q,%v", userID, err)
	}

	userID, err = store.Consume("tok-1")
	if err != nil || userID != "" {
		t.Fatalf("second consume should return empty, got %q,%v", userID, err)
	}
}

func TestMemoryResetTokenStore_Expiry(t *testing.T) {
	store := NewMemoryResetTokenStore()
	if err := store.Store("tok-1", "u1", 30*time.Millisecond); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	userID, err := store.Consume("tok-1")
	if err != nil || userID != "" {
		t.Fatalf("expired token should not resolve, got %q,%v", userID, err)
	}
}

func TestMemoryResetTokenStore_UnknownToken(t *testing.T) {
	store := NewMemoryResetTokenStore()
	userID, err := store.Consume("missing")
	if err != nil || userID != "" {
		t.Fatalf("unknown token should be empty,nil; got %q,%v", userID, err)
	}
}

func TestRedisResetTokenStore_HashesToken(t *testing.T) {
	mock := &mockResetKVClient{getDelVal: "u1"}
	store := &redisResetTokenStore{
		client: mock,
		prefix: "auth:pwreset:",
	}

	if err := store.Store("tok-1", "u1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	wantKey := "auth:pwreset:" + hashResetToken("tok-1")
	if mock.lastSetKey != wantKey {
		t.Fatalf("expected hashed key %q, got %q", wantKey, mock.lastSetKey)
	}
	if mock.lastSetVal != "u1" {
		t.Fatalf("stored value should be the user id, got %v", mock.lastSetVal)
	}

	userID, err := store.Consume("tok-1")
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1,nil; got %q,%v", userID, err)
	}
	if mock.lastGetDelKey != wantKey {
		t.Fatalf("consume should hit the hashed key, got %q", mock.lastGetDelKey)
	}
}

func TestRedisResetTokenStore_MissingKeyIsNotAnError(t *testing.T) {
	mock := &mockResetKVClient{getDelErr: redis.Nil}
	store := &redisResetTokenStore{
		client: mock,
		prefix: "auth:pwreset:",
	}

	userID, err := store.Consume("tok-1")
	if err != nil || userID != "" {
		t.Fatalf("redis.Nil should map to empty,nil; got %q,%v", userID, err)
	}
}
