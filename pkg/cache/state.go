package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned for unknown, expired or already consumed keys.
var ErrStateNotFound = errors.New("cache: state not found")

// StateStore holds short-lived values that are read exactly once, such as
// OAuth2 authorization state.
type StateStore interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and deletes it atomically.
	Take(ctx context.Context, key string) ([]byte, error)
}

// NewStateStore returns a Redis-backed store when Redis is connected and an
// in-process store otherwise.
func NewStateStore() StateStore {
	if RDB != nil {
		return NewRedisStateStore(RDB, "state:")
	}
	return NewMemoryStateStore()
}

// ── Redis ────────────────────────────────────────────────────────────────────

type RedisStateStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStateStore(client *redis.Client, prefix string) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: prefix}
}

func (s *RedisStateStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStateStore) Take(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// ── Memory ───────────────────────────────────────────────────────────────────

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStateStore is a single-process StateStore. Expired entries are
// dropped lazily on Put and Take.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: map[string]memoryEntry{}, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (s *MemoryStateStore) WithClock(now func() time.Time) *MemoryStateStore {
	s.now = now
	return s
}

func (s *MemoryStateStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}

	s.entries[key] = memoryEntry{value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStateStore) Take(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	delete(s.entries, key)

	if !s.now().Before(e.expiresAt) {
		return nil, ErrStateNotFound
	}
	return e.value, nil
}
