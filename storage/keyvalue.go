package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/provisionality/observability"
	"github.com/tailored-agentic-units/provisionality/property"
	"github.com/tailored-agentic-units/provisionality/value"
)

// Option configures a KeyValue.
type Option func(*KeyValue)

// WithStore sets the backing Store. Default: NewMemoryStore().
func WithStore(store Store) Option {
	return func(kv *KeyValue) {
		if store != nil {
			kv.store = store
		}
	}
}

// WithObserver sets the observability observer. Default: NoOpObserver.
func WithObserver(observer observability.Observer) Option {
	return func(kv *KeyValue) {
		if observer != nil {
			kv.observer = observer
		}
	}
}

// KeyValue stores JSON-representable values under string keys and notifies
// per-key observers when a key is set.
type KeyValue struct {
	store    Store
	observer observability.Observer

	mu        sync.RWMutex
	observers map[string][]*property.Observer
}

// New creates a KeyValue.
func New(opts ...Option) *KeyValue {
	kv := &KeyValue{
		store:     NewMemoryStore(),
		observer:  observability.NoOpObserver{},
		observers: make(map[string][]*property.Observer),
	}
	for _, opt := range opts {
		opt(kv)
	}
	return kv
}

// Has reports whether key holds a value.
func (kv *KeyValue) Has(ctx context.Context, key string) (bool, error) {
	keys, err := kv.store.List(ctx)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(keys, key)
	return found, nil
}

// Get decodes the value stored under key. Every call returns a fresh copy.
func (kv *KeyValue) Get(ctx context.Context, key string) (any, error) {
	entries, err := kv.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	sv, err := value.Unmarshal(entries[0].Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
	}
	return value.Decode(sv), nil
}

// Set stores v under key and then calls the key's observers in registration
// order, each with its own decoded copy. Observer errors do not undo the
// write; they are joined and returned.
func (kv *KeyValue) Set(ctx context.Context, key string, v any) error {
	sv, err := value.Encode(v)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	data, err := value.Marshal(sv)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := kv.store.Save(ctx, Entry{Key: key, Value: data}); err != nil {
		return err
	}

	kv.observer.OnEvent(ctx, observability.NewEvent(EventSet, observability.LevelVerbose, "storage", map[string]any{
		"key": key,
	}))

	kv.mu.RLock()
	observers := slices.Clone(kv.observers[key])
	kv.mu.RUnlock()

	var errs []error
	for _, obs := range observers {
		current, err := kv.Get(ctx, key)
		if err != nil {
			errs = append(errs, err)
			break
		}
		if err := obs.Notify(ctx, current); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes key. Observers are not notified.
func (kv *KeyValue) Delete(ctx context.Context, key string) error {
	if err := kv.store.Delete(ctx, key); err != nil {
		return err
	}
	kv.observer.OnEvent(ctx, observability.NewEvent(EventDelete, observability.LevelVerbose, "storage", map[string]any{
		"key": key,
	}))
	return nil
}

// AddObserver registers obs for key. Registering the same handle twice has
// no effect.
func (kv *KeyValue) AddObserver(key string, obs *property.Observer) error {
	if !property.Valid(obs) {
		return property.ErrNilObserver
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	if !slices.Contains(kv.observers[key], obs) {
		kv.observers[key] = append(kv.observers[key], obs)
	}
	return nil
}

// RemoveObserver unregisters obs for key. Unknown handles are ignored.
func (kv *KeyValue) RemoveObserver(key string, obs *property.Observer) error {
	if !property.Valid(obs) {
		return property.ErrNilObserver
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()

	remaining := slices.DeleteFunc(kv.observers[key], func(o *property.Observer) bool {
		return o == obs
	})
	if len(remaining) == 0 {
		delete(kv.observers, key)
		return nil
	}
	kv.observers[key] = remaining
	return nil
}
