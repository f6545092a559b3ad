// Package storage persists auxiliary state for handler components,
// namespaced by the owning handler's context.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jrife/stash/keys"
	"github.com/jrife/stash/storage/kv"
	"github.com/jrife/stash/storage/kv/plugins"
	"github.com/jrife/stash/utils/log"
)

// Store persists auxiliary state on behalf of a handler component.
// Each Store owns one context, fixed at construction, that namespaces
// every key it reads or writes: two Stores with different contexts
// never observe each other's entries, even when they share a backend.
//
// A Store is as safe for concurrent use as its backend. Every backend
// built into this module is safe for concurrent use, so a Store built
// by Open may be shared freely between goroutines.
type Store struct {
	backend     kv.Backend
	deriver     *keys.Deriver
	logger      *zap.Logger
	ownsBackend bool
	closed      atomic.Bool
}

// Option customizes a Store
type Option func(*Store)

// WithLogger sets the logger used for operation logging. If it is
// not provided no logs are emitted.
func WithLogger(logger *zap.Logger) Option {
	return func(store *Store) {
		if logger != nil {
			store.logger = logger
		}
	}
}

// WithSharedBackend marks the backend as shared between several
// stores: Close leaves the backend open and the caller that created
// the backend closes it.
func WithSharedBackend() Option {
	return func(store *Store) {
		store.ownsBackend = false
	}
}

// New creates a Store around an existing backend. The context is
// canonicalized and digested once here; a context that cannot be
// canonicalized fails construction and nothing is written to the
// backend.
func New(context interface{}, backend kv.Backend, opts ...Option) (*Store, error) {
	deriver, err := keys.NewDeriver(context)

	if err != nil {
		return nil, err
	}

	store := &Store{
		backend:     backend,
		deriver:     deriver,
		logger:      zap.NewNop(),
		ownsBackend: true,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// Open constructs the backend registered under driver from options
// and wraps it in a Store owned by context.
func Open(driver string, context interface{}, options kv.Options, opts ...Option) (*Store, error) {
	plugin := plugins.Plugin(driver)

	if plugin == nil {
		return nil, fmt.Errorf("%s is not a valid driver", driver)
	}

	backend, err := plugin.NewBackend(options)

	if err != nil {
		return nil, err
	}

	store, err := New(context, backend, opts...)

	if err != nil {
		backend.Close()

		return nil, err
	}

	return store, nil
}

// Set stores value under key, fully replacing any value previously
// stored for (context, key). The value must be json-serializable.
func (store *Store) Set(ctx context.Context, key interface{}, value interface{}) error {
	if store.closed.Load() {
		return kv.ErrClosed
	}

	derivedKey, err := store.deriver.Derive(key)

	if err != nil {
		return err
	}

	encoded, err := json.Marshal(value)

	if err != nil {
		return fmt.Errorf("could not encode value: %s", err.Error())
	}

	if err := store.backend.Set(ctx, derivedKey, encoded); err != nil {
		return err
	}

	logger, _ := log.LoggerFromContext(ctx, store.logger)
	logger.Debug("set", zap.String("key", derivedKey), zap.Int("bytes", len(encoded)))

	return nil
}

// Get loads the value stored under key into out and reports whether
// a value was present. A key that was never set for this context
// yields (false, nil): absence is a normal outcome, distinct from an
// operation failure.
func (store *Store) Get(ctx context.Context, key interface{}, out interface{}) (bool, error) {
	if store.closed.Load() {
		return false, kv.ErrClosed
	}

	derivedKey, err := store.deriver.Derive(key)

	if err != nil {
		return false, err
	}

	encoded, err := store.backend.Get(ctx, derivedKey)

	if err == kv.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := json.Unmarshal(encoded, out); err != nil {
		return false, fmt.Errorf("could not decode value: %s", err.Error())
	}

	logger, _ := log.LoggerFromContext(ctx, store.logger)
	logger.Debug("get", zap.String("key", derivedKey), zap.Int("bytes", len(encoded)))

	return true, nil
}

// Close releases the store. If the store owns its backend the
// backend connection is closed as well. Get and Set calls made after
// Close returns fail with kv.ErrClosed.
func (store *Store) Close() error {
	if !store.closed.CompareAndSwap(false, true) {
		return nil
	}

	if store.ownsBackend {
		return store.backend.Close()
	}

	return nil
}
