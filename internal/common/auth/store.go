package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned by SessionStore.Get when the key is absent or expired.
var ErrNoSession = stderrors.New("no session")

// SessionStore keeps the signed-in flag between CLI invocations.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// NewSessionStore picks the store named by kind. client is only used for redis.
func NewSessionStore(kind string, client redis.Cmdable) (SessionStore, error) {
	switch kind {
	case StoreRedis:
		if client == nil {
			return nil, fmt.Errorf("redis session store needs a redis client")
		}
		return NewRedisSessionStore(client), nil
	case StoreMemory, "":
		return NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}

// ==========================
// Redis
// ==========================

type RedisSessionStore struct {
	client redis.Cmdable
}

func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	return val, err
}

func (s *RedisSessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// ==========================
// Memory
// ==========================

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemorySessionStore lives for the process only. Used in tests and by
// workers that never sign in.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || (!e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)) {
		return "", ErrNoSession
	}
	return e.value, nil
}

func (s *MemorySessionStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
