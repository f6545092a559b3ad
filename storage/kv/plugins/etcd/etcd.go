// Package etcd implements a kv backend that keeps entries in a
// remote etcd cluster.
package etcd

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/jrife/stash/storage/kv"
)

const (
	DriverName  = "etcd"
	dialTimeout = 5 * time.Second
)

func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&EtcdPlugin{},
	}
}

var _ kv.Plugin = (*EtcdPlugin)(nil)

type EtcdPlugin struct {
}

func (plugin *EtcdPlugin) Name() string {
	return DriverName
}

func (plugin *EtcdPlugin) NewBackend(options kv.Options) (kv.Backend, error) {
	var config EtcdBackendConfig
	var err error

	if config.Host, err = options.Address("host"); err != nil {
		return nil, err
	}

	if config.Port, err = options.Address("port"); err != nil {
		return nil, err
	}

	return New(config)
}

func (plugin *EtcdPlugin) NewTempBackend() (kv.Backend, error) {
	return nil, kv.ErrNoTempBackend
}

type EtcdBackendConfig struct {
	// Host is the etcd endpoint host. Required.
	Host string
	// Port is the etcd endpoint port. Required.
	Port string
}

var _ kv.Backend = (*EtcdBackend)(nil)

// EtcdBackend stores entries in a remote etcd cluster. It is safe
// for concurrent use.
type EtcdBackend struct {
	client *clientv3.Client
	closed atomic.Bool
}

// New validates the connection parameters and creates the client.
// Both host and port must be non-empty; New fails before any network
// I/O when either is missing.
func New(config EtcdBackendConfig) (*EtcdBackend, error) {
	if config.Host == "" {
		return nil, fmt.Errorf("\"host\" is required")
	}

	if config.Port == "" {
		return nil, fmt.Errorf("\"port\" is required")
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{net.JoinHostPort(config.Host, config.Port)},
		DialTimeout: dialTimeout,
	})

	if err != nil {
		return nil, fmt.Errorf("could not connect to etcd at %s:%s: %s", config.Host, config.Port, err.Error())
	}

	return &EtcdBackend{client: client}, nil
}

// Get implements kv.Backend.Get. An empty result set for the key
// maps to kv.ErrNotFound, never to an empty value.
func (backend *EtcdBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if backend.closed.Load() {
		return nil, kv.ErrClosed
	}

	response, err := backend.client.Get(ctx, key)

	if err != nil {
		return nil, fmt.Errorf("could not read key %s: %s", key, err.Error())
	}

	if len(response.Kvs) == 0 {
		return nil, kv.ErrNotFound
	}

	return response.Kvs[0].Value, nil
}

// Set implements kv.Backend.Set
func (backend *EtcdBackend) Set(ctx context.Context, key string, value []byte) error {
	if backend.closed.Load() {
		return kv.ErrClosed
	}

	if _, err := backend.client.Put(ctx, key, string(value)); err != nil {
		return fmt.Errorf("could not write key %s: %s", key, err.Error())
	}

	return nil
}

// Close implements kv.Backend.Close
func (backend *EtcdBackend) Close() error {
	if !backend.closed.CompareAndSwap(false, true) {
		return nil
	}

	return backend.client.Close()
}
