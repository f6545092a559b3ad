package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no value exists for the requested key.
	// A missing key is a normal outcome, not a failure of the backend.
	ErrNotFound = errors.New("key not found")
	// ErrClosed indicates that the backend was closed. Function calls
	// occurring after Close returns must have no effect and return
	// ErrClosed.
	ErrClosed = errors.New("backend was closed")
	// ErrNoTempBackend indicates that a plugin cannot create throwaway
	// instances of its backend, usually because the backend requires
	// external infrastructure such as a running server.
	ErrNoTempBackend = errors.New("plugin does not support temp backends")
)

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewBackend returns an instance of the plugin backend
	// configured from options
	NewBackend(options Options) (Backend, error)
	// NewTempBackend returns an instance of the plugin backend
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// backend without knowing how to initialize it. It must
	// return ErrNoTempBackend if the plugin cannot create one.
	NewTempBackend() (Backend, error)
}

// Backend is a flat key-value storage engine. Keys are the opaque
// derived keys produced by the keys package and values are opaque
// blobs. Implementations must document whether they are safe for
// concurrent use; callers must serialize access to backends that
// are not.
type Backend interface {
	// Get returns the value stored under key. It must return
	// ErrNotFound, unwrapped, if no value exists for key. It must
	// not return a zero-length value in place of ErrNotFound: an
	// empty stored value and a missing key are distinct outcomes.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. If a value already exists for
	// key it is fully replaced. After Set returns nil the new
	// value is visible to subsequent Gets.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the backend connection. Get and Set calls
	// that start after Close returns must return ErrClosed.
	Close() error
}
