package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrStoreUnavailable wraps backend failures.
var ErrStoreUnavailable = errors.New("state store unavailable")

// Store persists snapshots per visitor id. A missing id loads as Initial().
type Store interface {
	Load(ctx context.Context, id string) (Snapshot, error)
	Save(ctx context.Context, id string, s Snapshot) error
	Ping(ctx context.Context) error
}

// MemoryStore keeps the most recently used visitors in process.
type MemoryStore struct {
	cache *lru.Cache[string, Snapshot]
}

// DefaultMemorySize bounds the number of visitors kept by NewMemoryStore(0).
const DefaultMemorySize = 4096

// NewMemoryStore creates an LRU-bounded store.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New[string, Snapshot](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create state cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Snapshot, error) {
	if s, ok := m.cache.Get(id); ok {
		return s, nil
	}
	return Initial(), nil
}

func (m *MemoryStore) Save(_ context.Context, id string, s Snapshot) error {
	m.cache.Add(id, s)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

// Len reports how many visitors are cached.
func (m *MemoryStore) Len() int { return m.cache.Len() }

// KV is the subset of fiber.Storage used by KVStore.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

// KVStore keeps JSON snapshots in a key-value backend such as Redis.
type KVStore struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// NewKVStore creates a store writing keys "<prefix><id>" that expire after ttl.
func NewKVStore(kv KV, prefix string, ttl time.Duration) *KVStore {
	return &KVStore{kv: kv, prefix: prefix, ttl: ttl}
}

func (k *KVStore) Load(_ context.Context, id string) (Snapshot, error) {
	data, err := k.kv.Get(k.prefix + id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(data) == 0 {
		return Initial(), nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

func (k *KVStore) Save(_ context.Context, id string, s Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := k.kv.Set(k.prefix+id, data, k.ttl); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping round-trips a probe key.
func (k *KVStore) Ping(context.Context) error {
	if err := k.kv.Set(k.prefix+"_ping", []byte("1"), time.Minute); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if _, err := k.kv.Get(k.prefix + "_ping"); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
