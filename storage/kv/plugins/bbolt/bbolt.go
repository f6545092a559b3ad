// Package bbolt implements a kv backend that keeps entries in a
// single-file B+tree database.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/jrife/stash/storage/kv"
	"github.com/jrife/stash/utils/uuid"
)

const (
	DriverName = "bbolt"
	// DefaultName is the database file name used when the "name"
	// option is absent.
	DefaultName = "stash.db"
)

var storeBucket = []byte("store")

func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&BBoltPlugin{},
	}
}

var _ kv.Plugin = (*BBoltPlugin)(nil)

type BBoltPlugin struct {
}

func (plugin *BBoltPlugin) Name() string {
	return DriverName
}

func (plugin *BBoltPlugin) NewBackend(options kv.Options) (kv.Backend, error) {
	var config BBoltBackendConfig
	var err error

	if config.Path, err = options.String("path", "."); err != nil {
		return nil, err
	}

	if config.Name, err = options.String("name", DefaultName); err != nil {
		return nil, err
	}

	return New(config)
}

func (plugin *BBoltPlugin) NewTempBackend() (kv.Backend, error) {
	return plugin.NewBackend(kv.Options{
		"path": os.TempDir(),
		"name": fmt.Sprintf("stash-bbolt-%s.db", uuid.MustUUID()),
	})
}

type BBoltBackendConfig struct {
	// Path is the directory holding the database file. Defaults to
	// the current directory.
	Path string
	// Name is the database file name. Defaults to DefaultName.
	Name string
}

var _ kv.Backend = (*BBoltBackend)(nil)

// BBoltBackend stores entries in one bucket of a single-file B+tree
// database. It is safe for concurrent use.
type BBoltBackend struct {
	db *bolt.DB
}

// New opens the database file at the configured path, creating it if
// absent, and ensures the store bucket exists. Running New against an
// already-initialized file has no effect on existing entries.
func New(config BBoltBackendConfig) (*BBoltBackend, error) {
	if config.Path == "" {
		config.Path = "."
	}

	if config.Name == "" {
		config.Name = DefaultName
	}

	path := filepath.Join(config.Path, config.Name)
	db, err := bolt.Open(path, 0666, nil)

	if err != nil {
		return nil, fmt.Errorf("could not open bbolt store at %s: %s", path, err.Error())
	}

	if err := db.Update(func(txn *bolt.Tx) error {
		_, err := txn.CreateBucketIfNotExists(storeBucket)

		return err
	}); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure store bucket exists: %s", err.Error())
	}

	return &BBoltBackend{db: db}, nil
}

// Get implements kv.Backend.Get. Existence is checked with a cursor
// rather than a nil test on the value so that zero-length values are
// not mistaken for missing keys.
func (backend *BBoltBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	if err := backend.db.View(func(txn *bolt.Tx) error {
		k, v := txn.Bucket(storeBucket).Cursor().Seek([]byte(key))

		if !bytes.Equal(k, []byte(key)) {
			return kv.ErrNotFound
		}

		// v is only valid for the life of the transaction
		value = make([]byte, len(v))
		copy(value, v)

		return nil
	}); err != nil {
		return nil, translateErr(err)
	}

	return value, nil
}

// Set implements kv.Backend.Set
func (backend *BBoltBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := backend.db.Update(func(txn *bolt.Tx) error {
		return txn.Bucket(storeBucket).Put([]byte(key), value)
	}); err != nil {
		return translateErr(err)
	}

	return nil
}

// Close implements kv.Backend.Close
func (backend *BBoltBackend) Close() error {
	return backend.db.Close()
}

func translateErr(err error) error {
	if err == bolt.ErrDatabaseNotOpen {
		return kv.ErrClosed
	}

	return err
}
