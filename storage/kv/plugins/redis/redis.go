// Package redis implements a kv backend that keeps entries in a
// remote redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jrife/stash/storage/kv"
)

const DriverName = "redis"

func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&RedisPlugin{},
	}
}

var _ kv.Plugin = (*RedisPlugin)(nil)

type RedisPlugin struct {
}

func (plugin *RedisPlugin) Name() string {
	return DriverName
}

func (plugin *RedisPlugin) NewBackend(options kv.Options) (kv.Backend, error) {
	var config RedisBackendConfig
	var err error

	if config.Host, err = options.Address("host"); err != nil {
		return nil, err
	}

	if config.Port, err = options.Address("port"); err != nil {
		return nil, err
	}

	return New(config)
}

func (plugin *RedisPlugin) NewTempBackend() (kv.Backend, error) {
	return nil, kv.ErrNoTempBackend
}

type RedisBackendConfig struct {
	// Host is the redis server host. Required.
	Host string
	// Port is the redis server port. Required.
	Port string
}

var _ kv.Backend = (*RedisBackend)(nil)

// RedisBackend stores entries in a remote redis server. It is safe
// for concurrent use.
type RedisBackend struct {
	client *goredis.Client
}

// New validates the connection parameters and connects to the
// server. Both host and port must be non-empty; New fails before any
// network I/O when either is missing.
func New(config RedisBackendConfig) (*RedisBackend, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("\"host\" is required")
	}

	if config.Port == "" {
		return nil, fmt.Errorf("\"port\" is required")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr: net.JoinHostPort(config.Host, config.Port),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()

		return nil, fmt.Errorf("could not connect to redis at %s:%s: %s", config.Host, config.Port, err.Error())
	}

	return &RedisBackend{client: client}, nil
}

// Get implements kv.Backend.Get. The server's nil reply for a
// missing key maps to kv.ErrNotFound, never to an empty value.
func (backend *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := backend.client.Get(ctx, key).Bytes()

	if err == goredis.Nil {
		return nil, kv.ErrNotFound
	} else if err != nil {
		return nil, translateErr(err)
	}

	return value, nil
}

// Set implements kv.Backend.Set. The write unconditionally replaces
// any existing value and sets no TTL.
func (backend *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := backend.client.Set(ctx, key, value, 0).Err(); err != nil {
		return translateErr(err)
	}

	return nil
}

// Close implements kv.Backend.Close
func (backend *RedisBackend) Close() error {
	return backend.client.Close()
}

func translateErr(err error) error {
	if errors.Is(err, goredis.ErrClosed) {
		return kv.ErrClosed
	}

	return err
}
