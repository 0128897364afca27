package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Storage is the durable persistence port for cart state. Load returns
// (nil, nil) when nothing is stored under the id.
type Storage interface {
	Load(ctx context.Context, cartID string) (*Cart, error)
	Save(ctx context.Context, cartID string, cart Cart) error
	Clear(ctx context.Context, cartID string) error
}

// MemoryStorage keeps carts in-process. Used in tests and single-node dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(ctx context.Context, cartID string) (*Cart, error) {
	m.mu.RLock()
	raw, ok := m.carts[cartID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (m *MemoryStorage) Save(ctx context.Context, cartID string, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.carts[cartID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(ctx context.Context, cartID string) error {
	m.mu.Lock()
	delete(m.carts, cartID)
	m.mu.Unlock()
	return nil
}

// kvStore is the slice of the redis client the cart storage needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(cartID string) string
}

// RedisStorage persists carts in redis under the namespaced cart key.
type RedisStorage struct {
	kv    kvStore
	ttl   time.Duration
	isNil func(error) bool
}

// NewRedisStorage builds a redis-backed cart storage. isNil distinguishes a
// missing key from a real error. TTL of zero means no expiry.
func NewRedisStorage(kv kvStore, ttl time.Duration, isNil func(error) bool) *RedisStorage {
	return &RedisStorage{kv: kv, ttl: ttl, isNil: isNil}
}

func (r *RedisStorage) Load(ctx context.Context, cartID string) (*Cart, error) {
	raw, err := r.kv.Get(ctx, r.kv.CartKey(cartID))
	if err != nil {
		if r.isNil != nil && r.isNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisStorage) Save(ctx context.Context, cartID string, cart Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.kv.CartKey(cartID), string(raw), r.ttl)
}

func (r *RedisStorage) Clear(ctx context.Context, cartID string) error {
	return r.kv.Del(ctx, r.kv.CartKey(cartID))
}
