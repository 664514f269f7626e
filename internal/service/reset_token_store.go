package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokenStore guarda tokens de recuperación de contraseña. Se
// persiste el hash del token, nunca el token en claro. Consume borra
// la entrada: cada token sirve una sola vez.
type ResetTokenStore interface {
	Store(token, userID string, ttl time.Duration) error
	Consume(token string) (string, error)
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

type memoryResetTokenStore struct {
	mu    sync.Mutex
	items map[string]resetEntry
}

type resetEntry struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryResetTokenStore() ResetTokenStore {
	return &memoryResetTokenStore{
		items: make(map[string]resetEntry),
	}
}

func (s *memoryResetTokenStore) Store(token, userID string, ttl time.Duration) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[hashResetToken(token)] = resetEntry{
		userID:    userID,
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *memoryResetTokenStore) Consume(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := hashResetToken(token)
	entry, ok := s.items[key]
	if !ok {
		return "", nil
	}
	delete(s.items, key)
	if time.Now().UTC().After(entry.expiresAt) {
		return "", nil
	}
	return entry.userID, nil
}

type redisResetKVClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

type redisResetTokenStore struct {
	client redisResetKVClient
	prefix string
}

func NewRedisResetTokenStore(client *redis.Client) ResetTokenStore {
	if client == nil {
		return nil
	}
	return &redisResetTokenStore{
		client: client,
		prefix: "auth:pwreset:",
	}
}

func (s *redisResetTokenStore) Store(token, userID string, ttl time.Duration) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+hashResetToken(token), userID, ttl).Err()
}

func (s *redisResetTokenStore) Consume(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	userID, err := s.client.GetDel(ctx, s.prefix+hashResetToken(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return userID, nil
}
