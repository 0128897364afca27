package checkout

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mohansky/ecom-backend/internal/cart"
)

// Snapshot is the checkout state captured before handing control to the
// payment widget, so an abandoned payment can resume later.
type Snapshot struct {
	Cart      cart.Cart    `json:"cart"`
	Customer  CustomerInfo `json:"customerInfo"`
	Timestamp time.Time    `json:"timestamp"`
}

// RecoveryStorage persists checkout snapshots. Load returns (nil, nil) for
// a missing or expired snapshot; expiry is enforced at read time and an
// expired snapshot is deleted on read.
type RecoveryStorage interface {
	Save(ctx context.Context, checkoutID string, snapshot Snapshot) error
	Load(ctx context.Context, checkoutID string) (*Snapshot, error)
	Clear(ctx context.Context, checkoutID string) error
}

// DefaultRecoveryTTL bounds how long an abandoned checkout stays resumable.
const DefaultRecoveryTTL = 24 * time.Hour

func expired(snapshot Snapshot, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		ttl = DefaultRecoveryTTL
	}
	return now.Sub(snapshot.Timestamp) > ttl
}

// MemoryRecovery keeps snapshots in-process. Used in tests and single-node dev.
type MemoryRecovery struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	ttl       time.Duration
	now       func() time.Time
}

func NewMemoryRecovery(ttl time.Duration) *MemoryRecovery {
	return &MemoryRecovery{
		snapshots: make(map[string][]byte),
		ttl:       ttl,
		now:       time.Now,
	}
}

func (m *MemoryRecovery) Save(ctx context.Context, checkoutID string, snapshot Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[checkoutID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryRecovery) Load(ctx context.Context, checkoutID string) (*Snapshot, error) {
	m.mu.RLock()
	raw, ok := m.snapshots[checkoutID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		_ = m.Clear(ctx, checkoutID)
		return nil, nil
	}
	if expired(snapshot, m.ttl, m.now()) {
		_ = m.Clear(ctx, checkoutID)
		return nil, nil
	}
	return &snapshot, nil
}

func (m *MemoryRecovery) Clear(ctx context.Context, checkoutID string) error {
	m.mu.Lock()
	delete(m.snapshots, checkoutID)
	m.mu.Unlock()
	return nil
}

// recoveryKV is the slice of the redis client the recovery storage needs.
type recoveryKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RecoveryKey(checkoutID string) string
}

// RedisRecovery persists snapshots in redis. The key also carries a server
// TTL, but the read-time check stays authoritative so a lowered TTL applies
// to snapshots written before the change.
type RedisRecovery struct {
	kv    recoveryKV
	ttl   time.Duration
	isNil func(error) bool
	now   func() time.Time
}

func NewRedisRecovery(kv recoveryKV, ttl time.Duration, isNil func(error) bool) *RedisRecovery {
	if ttl <= 0 {
		ttl = DefaultRecoveryTTL
	}
	return &RedisRecovery{kv: kv, ttl: ttl, isNil: isNil, now: time.Now}
}

func (r *RedisRecovery) Save(ctx context.Context, checkoutID string, snapshot Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, r.kv.RecoveryKey(checkoutID), string(raw), r.ttl)
}

func (r *RedisRecovery) Load(ctx context.Context, checkoutID string) (*Snapshot, error) {
	raw, err := r.kv.Get(ctx, r.kv.RecoveryKey(checkoutID))
	if err != nil {
		if r.isNil != nil && r.isNil(err) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		_ = r.Clear(ctx, checkoutID)
		return nil, nil
	}
	if expired(snapshot, r.ttl, r.now()) {
		_ = r.Clear(ctx, checkoutID)
		return nil, nil
	}
	return &snapshot, nil
}

func (r *RedisRecovery) Clear(ctx context.Context, checkoutID string) error {
	return r.kv.Del(ctx, r.kv.RecoveryKey(checkoutID))
}
