package storage_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tailored-agentic-units/provisionality/storage"
)

func TestMemoryStore_SaveLoadList(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	err := store.Save(ctx,
		storage.Entry{Key: "b", Value: []byte(`2`)},
		storage.Entry{Key: "a", Value: []byte(`"1"`)},
	)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	keys, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"a", "b"}) {
		t.Errorf("List() = %v, want [a b]", keys)
	}

	entries, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(entries[0].Value) != `"1"` {
		t.Errorf("Load(a) = %s, want \"1\"", entries[0].Value)
	}

	entries[0].Value[0] = 'x'
	again, _ := store.Load(ctx, "a")
	if string(again[0].Value) != `"1"` {
		t.Error("Load returned shared bytes")
	}
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	if _, err := store.Load(ctx, "missing"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Load() error = %v, want ErrKeyNotFound", err)
	}
	if err := store.Save(ctx, storage.Entry{Key: "k"}); !errors.Is(err, storage.ErrSaveFailed) {
		t.Errorf("Save() error = %v, want ErrSaveFailed", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() error = %v, want nil", err)
	}
}

func TestConfig(t *testing.T) {
	cfg := storage.DefaultConfig()
	if cfg.Backend != storage.BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, storage.BackendMemory)
	}

	cfg.Merge(&storage.Config{})
	if cfg.Backend != storage.BackendMemory {
		t.Errorf("empty Merge changed Backend to %q", cfg.Backend)
	}

	if _, err := storage.NewStore(&cfg); err != nil {
		t.Errorf("NewStore() error = %v", err)
	}
	if _, err := storage.NewStore(&storage.Config{Backend: "redis"}); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Errorf("NewStore(redis) error = %v, want ErrUnknownBackend", err)
	}
}
