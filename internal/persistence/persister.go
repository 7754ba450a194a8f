package persistence

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Persister stores one cart per key.
//
// Load returns ok=false and a nil error when nothing usable is stored: the
// key is missing or its payload is malformed. A non-nil error means the
// backend could not be read and the stored cart, if any, is unknown.
type Persister interface {
	Load(ctx context.Context, key string) (domain.CartState, bool, error)
	Save(ctx context.Context, key string, state domain.CartState) error
}

// MemoryPersister keeps encoded carts in process memory.
type MemoryPersister struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{carts: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, key string) (domain.CartState, bool, error) {
	m.mu.RLock()
	data, ok := m.carts[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	state, err := Decode(data)
	if err != nil {
		return nil, false, nil
	}
	return state, true, nil
}

func (m *MemoryPersister) Save(_ context.Context, key string, state domain.CartState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = data
	return nil
}

// Raw returns the stored payload for key, mainly for inspection in tests.
func (m *MemoryPersister) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.carts[key]
	return data, ok
}

// Put stores a raw payload as if written by another process.
func (m *MemoryPersister) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[key] = data
}
