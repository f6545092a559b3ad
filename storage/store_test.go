package storage_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jrife/stash/storage"
	"github.com/jrife/stash/storage/kv"
)

type modelState struct {
	Name    string            `json:"name"`
	Epochs  int               `json:"epochs"`
	Metrics map[string]string `json:"metrics"`
	Tags    []string          `json:"tags"`
}

func newMemoryStore(t *testing.T, context interface{}, opts ...storage.Option) *storage.Store {
	store, err := storage.New(context, kv.NewMemoryBackend(), opts...)

	if err != nil {
		t.Fatalf("could not create store: %s", err.Error())
	}

	t.Cleanup(func() { store.Close() })

	return store
}

func TestRoundTripInt(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	if err := store.Set(context.Background(), "count", 42); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var count int
	found, err := store.Get(context.Background(), "count", &count)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !found {
		t.Fatalf("expected value to be found")
	}

	if count != 42 {
		t.Fatalf("expected count to be 42, got %d", count)
	}
}

func TestRoundTripString(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	if err := store.Set(context.Background(), "note", "hello"); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var note string
	found, err := store.Get(context.Background(), "note", &note)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !found {
		t.Fatalf("expected value to be found")
	}

	if note != "hello" {
		t.Fatalf("expected note to be hello, got %s", note)
	}
}

func TestRoundTripStructured(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	state := modelState{
		Name:    "fraud-detector",
		Epochs:  12,
		Metrics: map[string]string{"auc": "0.91"},
		Tags:    []string{"prod", "v2"},
	}

	if err := store.Set(context.Background(), "state", state); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var loaded modelState
	found, err := store.Get(context.Background(), "state", &loaded)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !found {
		t.Fatalf("expected value to be found")
	}

	if diff := cmp.Diff(state, loaded); diff != "" {
		t.Fatalf("loaded state differs (-want +got):\n%s", diff)
	}
}

func TestAbsentKey(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	var value interface{}
	found, err := store.Get(context.Background(), "never-set", &value)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if found {
		t.Fatalf("expected value to be absent")
	}
}

func TestOverwrite(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	if err := store.Set(context.Background(), "k", "first"); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if err := store.Set(context.Background(), "k", "second"); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var value string
	found, err := store.Get(context.Background(), "k", &value)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !found {
		t.Fatalf("expected value to be found")
	}

	if value != "second" {
		t.Fatalf("expected value to be second, got %s", value)
	}
}

func TestNamespaceIsolation(t *testing.T) {
	backend := kv.NewMemoryBackend()
	defer backend.Close()

	alice, err := storage.New(map[string]string{"owner": "alice"}, backend, storage.WithSharedBackend())

	if err != nil {
		t.Fatalf("could not create store: %s", err.Error())
	}

	bob, err := storage.New(map[string]string{"owner": "bob"}, backend, storage.WithSharedBackend())

	if err != nil {
		t.Fatalf("could not create store: %s", err.Error())
	}

	if err := alice.Set(context.Background(), "x", 1); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var value int

	if found, err := bob.Get(context.Background(), "x", &value); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if found {
		t.Fatalf("expected bob's store to not see alice's entry")
	}

	if found, err := alice.Get(context.Background(), "x", &value); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if !found {
		t.Fatalf("expected value to be found")
	}

	if value != 1 {
		t.Fatalf("expected value to be 1, got %d", value)
	}
}

func TestSharedBackendSurvivesStoreClose(t *testing.T) {
	backend := kv.NewMemoryBackend()
	defer backend.Close()

	alice, err := storage.New(map[string]string{"owner": "alice"}, backend, storage.WithSharedBackend())

	if err != nil {
		t.Fatalf("could not create store: %s", err.Error())
	}

	bob, err := storage.New(map[string]string{"owner": "bob"}, backend, storage.WithSharedBackend())

	if err != nil {
		t.Fatalf("could not create store: %s", err.Error())
	}

	if err := bob.Set(context.Background(), "x", 1); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if err := alice.Close(); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var value int

	if found, err := bob.Get(context.Background(), "x", &value); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if !found {
		t.Fatalf("expected value to be found")
	}
}

func TestClosedStore(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	if err := store.Close(); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	var value int

	if _, err := store.Get(context.Background(), "x", &value); err != kv.ErrClosed {
		t.Fatalf("expected err to be ErrClosed, got %#v", err)
	}

	if err := store.Set(context.Background(), "x", 1); err != kv.ErrClosed {
		t.Fatalf("expected err to be ErrClosed, got %#v", err)
	}
}

func TestNonCanonicalContext(t *testing.T) {
	if _, err := storage.New(func() {}, kv.NewMemoryBackend()); err == nil {
		t.Fatalf("expected err to not be nil")
	}
}

func TestNonSerializableValue(t *testing.T) {
	store := newMemoryStore(t, map[string]string{"owner": "alice"})

	if err := store.Set(context.Background(), "bad", make(chan int)); err == nil {
		t.Fatalf("expected err to not be nil")
	}

	// the failed set must not have stored anything
	var value interface{}

	if found, err := store.Get(context.Background(), "bad", &value); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if found {
		t.Fatalf("expected value to be absent")
	}
}

func TestOpen(t *testing.T) {
	store, err := storage.Open("memory", map[string]string{"owner": "alice"}, kv.Options{})

	if err != nil {
		t.Fatalf("could not open store: %s", err.Error())
	}

	defer store.Close()

	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := storage.Open("no-such-driver", nil, kv.Options{}); err == nil {
		t.Fatalf("expected err to not be nil")
	}
}

func TestOpenSQLite(t *testing.T) {
	options := kv.Options{"path": t.TempDir(), "name": "store.db"}
	store, err := storage.Open("sqlite", map[string]string{"owner": "alice"}, options)

	if err != nil {
		t.Fatalf("could not open store: %s", err.Error())
	}

	if err := store.Set(context.Background(), "k", 7); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	// entries persist across store lifetimes
	store, err = storage.Open("sqlite", map[string]string{"owner": "alice"}, options)

	if err != nil {
		t.Fatalf("could not reopen store: %s", err.Error())
	}

	defer store.Close()

	var value int

	if found, err := store.Get(context.Background(), "k", &value); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if !found {
		t.Fatalf("expected value to be found")
	}

	if value != 7 {
		t.Fatalf("expected value to be 7, got %d", value)
	}
}
