package kv

import (
	"context"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
)

const MemoryDriverName = "memory"

var _ Plugin = (*MemoryPlugin)(nil)

// MemoryPlugin constructs in-memory backends. It recognizes no
// options.
type MemoryPlugin struct {
}

func (plugin *MemoryPlugin) Name() string {
	return MemoryDriverName
}

func (plugin *MemoryPlugin) NewBackend(options Options) (Backend, error) {
	return NewMemoryBackend(), nil
}

func (plugin *MemoryPlugin) NewTempBackend() (Backend, error) {
	return NewMemoryBackend(), nil
}

var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend is an in-memory implementation of the Backend
// interface. It is safe for concurrent use. Entries do not survive
// the process; it exists for tests and for callers that want cheap
// namespaced scratch space shared between several stores.
type MemoryBackend struct {
	mu     sync.RWMutex
	m      *treemap.Map
	closed bool
}

// NewMemoryBackend creates an empty MemoryBackend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: treemap.NewWithStringComparator()}
}

// Get implements Backend.Get
func (backend *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	backend.mu.RLock()
	defer backend.mu.RUnlock()

	if backend.closed {
		return nil, ErrClosed
	}

	value, ok := backend.m.Get(key)

	if !ok {
		return nil, ErrNotFound
	}

	return value.([]byte), nil
}

// Set implements Backend.Set
func (backend *MemoryBackend) Set(ctx context.Context, key string, value []byte) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	if backend.closed {
		return ErrClosed
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	backend.m.Put(key, copied)

	return nil
}

// Close implements Backend.Close
func (backend *MemoryBackend) Close() error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	backend.closed = true
	backend.m.Clear()

	return nil
}
