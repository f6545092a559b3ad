// Package sqlite implements a kv backend that keeps entries in a
// single local database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/jrife/stash/storage/kv"
	"github.com/jrife/stash/utils/uuid"
)

const (
	DriverName = "sqlite"
	// DefaultName is the database file name used when the "name"
	// option is absent.
	DefaultName = "stash.db"
)

func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&SQLitePlugin{},
	}
}

var _ kv.Plugin = (*SQLitePlugin)(nil)

type SQLitePlugin struct {
}

func (plugin *SQLitePlugin) Name() string {
	return DriverName
}

func (plugin *SQLitePlugin) NewBackend(options kv.Options) (kv.Backend, error) {
	var config SQLiteBackendConfig
	var err error

	if config.Path, err = options.String("path", "."); err != nil {
		return nil, err
	}

	if config.Name, err = options.String("name", DefaultName); err != nil {
		return nil, err
	}

	return New(config)
}

func (plugin *SQLitePlugin) NewTempBackend() (kv.Backend, error) {
	return plugin.NewBackend(kv.Options{
		"path": os.TempDir(),
		"name": fmt.Sprintf("stash-%s.db", uuid.MustUUID()),
	})
}

type SQLiteBackendConfig struct {
	// Path is the directory holding the database file. Defaults to
	// the current directory.
	Path string
	// Name is the database file name. Defaults to DefaultName.
	Name string
}

var _ kv.Backend = (*SQLiteBackend)(nil)

// SQLiteBackend stores entries as rows of a two-column table in a
// single database file. It is safe for concurrent use; the
// database/sql pool serializes access to the underlying connection.
type SQLiteBackend struct {
	db     *sql.DB
	closed atomic.Bool
}

// New opens the database file at the configured path, creating it if
// absent, and ensures the store table exists. Running New against an
// already-initialized file has no effect on existing entries.
func New(config SQLiteBackendConfig) (*SQLiteBackend, error) {
	if config.Path == "" {
		config.Path = "."
	}

	if config.Name == "" {
		config.Name = DefaultName
	}

	path := filepath.Join(config.Path, config.Name)
	db, err := sql.Open("sqlite", path)

	if err != nil {
		return nil, fmt.Errorf("could not open sqlite store at %s: %s", path, err.Error())
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not open sqlite store at %s: %s", path, err.Error())
	}

	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS store (key TEXT PRIMARY KEY, value BLOB)"); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure store table exists: %s", err.Error())
	}

	return &SQLiteBackend{db: db}, nil
}

// Get implements kv.Backend.Get. Keys are always bound as query
// parameters, never spliced into the statement text.
func (backend *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if backend.closed.Load() {
		return nil, kv.ErrClosed
	}

	var value []byte
	err := backend.db.QueryRowContext(ctx, "SELECT value FROM store WHERE key = ?", key).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, kv.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("could not read key %s: %s", key, err.Error())
	}

	return value, nil
}

// Set implements kv.Backend.Set
func (backend *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	if backend.closed.Load() {
		return kv.ErrClosed
	}

	_, err := backend.db.ExecContext(ctx, "INSERT INTO store (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value", key, value)

	if err != nil {
		return fmt.Errorf("could not write key %s: %s", key, err.Error())
	}

	return nil
}

// Close implements kv.Backend.Close
func (backend *SQLiteBackend) Close() error {
	if !backend.closed.CompareAndSwap(false, true) {
		return nil
	}

	return backend.db.Close()
}
