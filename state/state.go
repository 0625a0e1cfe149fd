// Package state implements the reflector-driven State: a prefixed,
// observer-notified view over a backing Store, written only by reflectors
// that map Topic messages or Property notifications into named updates.
//
//	s, err := state.New(&state.Config{Prefix: "user."})
//	err = s.AddTopicReflector(profile, func(data any) (state.Change, error) {
//	    msg := data.(map[string]any)
//	    return state.Change{}.Set("name", msg["name"]), nil
//	})
//	name := s.Property("name") // reads store key "user.name"
//
// A State is Mutable or Immutable, decided at construction. An Immutable
// State rejects every reflector, so its store content is whatever was seeded.
//
// Reflectors cannot be removed. They live as long as their source and State.
package state

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/observability"
	"github.com/tailored-agentic-units/provisionality/property"
	"github.com/tailored-agentic-units/provisionality/topic"
	"github.com/tailored-agentic-units/provisionality/value"
)

// Option overrides a config-derived dependency of a State.
type Option func(*State)

// WithStore makes the State operate on store instead of a private one.
// The store is shared live, not copied.
func WithStore(store *Store) Option {
	return func(s *State) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDispatcher overrides dispatch.Default for observer notifications.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(s *State) {
		if d != nil {
			s.dispatcher = d
		}
	}
}

// WithObserver overrides the observer named in Config.
func WithObserver(o observability.Observer) Option {
	return func(s *State) {
		if o != nil {
			s.observer = o
		}
	}
}

// State is a namespaced value container fed by reflectors.
type State struct {
	immutable  bool
	prefix     string
	store      *Store
	observers  map[string][]*property.Observer
	mu         sync.Mutex
	dispatcher *dispatch.Dispatcher
	observer   observability.Observer
}

// New creates a State from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) (*State, error) {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	observer, err := observability.Resolve(c.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	s := &State{
		immutable:  c.Immutable,
		prefix:     c.Prefix,
		store:      NewStore(),
		observers:  make(map[string][]*property.Observer),
		dispatcher: dispatch.Default(),
		observer:   observer,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.observer.OnEvent(context.Background(), observability.NewEvent(
		EventStateCreate,
		observability.LevelVerbose,
		"state",
		map[string]any{
			"prefix":    s.prefix,
			"immutable": s.immutable,
			"keys":      s.store.Len(),
		},
	))

	return s, nil
}

// IsImmutable reports whether reflectors are locked out.
func (s *State) IsImmutable() bool {
	return s.immutable
}

// Prefix returns the key prefix.
func (s *State) Prefix() string {
	return s.prefix
}

// Store returns the backing store.
func (s *State) Store() *Store {
	return s.store
}

// Property returns a live view of the named property. Views are cheap and
// independent; all views of one name share its value and observers.
func (s *State) Property(name string) *View {
	return &View{state: s, key: s.prefix + name}
}

// Snapshot decodes every stored value under the prefix, keyed by local name.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any)
	for _, key := range s.store.Keys() {
		if !strings.HasPrefix(key, s.prefix) {
			continue
		}
		if sv, ok := s.store.lookup(key); ok {
			out[strings.TrimPrefix(key, s.prefix)] = value.Decode(sv)
		}
	}
	return out
}

// AddTopicReflector commits transform(data) for every message dispatched on t.
func (s *State) AddTopicReflector(t *topic.Topic, transform Transform) error {
	if err := s.checkReflector(transform); err != nil {
		return err
	}
	if t == nil {
		return ErrNilSource
	}

	listener := topic.NewListener(func(ctx context.Context, data any) error {
		return s.reflect(ctx, transform, data)
	})
	if err := t.AddListener(listener); err != nil {
		return fmt.Errorf("failed to attach reflector: %w", err)
	}

	s.observer.OnEvent(context.Background(), observability.NewEvent(
		EventReflectorAdd,
		observability.LevelVerbose,
		"state",
		map[string]any{"prefix": s.prefix, "source": "topic", "topic": t.Name()},
	))
	return nil
}

// AddPropertyReflector commits transform(value) every time p notifies. A
// Constant notifies once; a View notifies on each change of its key.
func (s *State) AddPropertyReflector(p property.Property, transform Transform) error {
	if err := s.checkReflector(transform); err != nil {
		return err
	}
	if p == nil {
		return ErrNilSource
	}

	obs := property.NewObserver(func(ctx context.Context, v any) error {
		return s.reflect(ctx, transform, v)
	})
	if err := p.AddObserver(obs); err != nil {
		return fmt.Errorf("failed to attach reflector: %w", err)
	}

	s.observer.OnEvent(context.Background(), observability.NewEvent(
		EventReflectorAdd,
		observability.LevelVerbose,
		"state",
		map[string]any{"prefix": s.prefix, "source": "property"},
	))
	return nil
}

func (s *State) checkReflector(transform Transform) error {
	if s.immutable {
		return ErrImmutable
	}
	if transform == nil {
		return ErrNilTransform
	}
	return nil
}

// reflect runs on the dispatcher: it is the body of a reflector listener or
// observer, so its error is logged rather than returned to anyone.
func (s *State) reflect(ctx context.Context, transform Transform, data any) error {
	change, err := transform(data)
	if err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}

	for _, update := range change {
		if err := s.commit(ctx, update); err != nil {
			return err
		}
	}
	return nil
}

// commit writes one update and queues its notifications. The store write
// and the enqueue happen under the State lock, so notifications reach the
// FIFO dispatcher in commit order.
func (s *State) commit(ctx context.Context, update Update) error {
	key := s.prefix + update.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Value == nil {
		existed := s.store.delete(key)
		s.observer.OnEvent(ctx, observability.NewEvent(
			EventStateDelete,
			observability.LevelVerbose,
			"state",
			map[string]any{"key": key, "existed": existed},
		))
	} else {
		sv, err := value.Encode(update.Value)
		if err != nil {
			return fmt.Errorf("failed to commit %q: %w", key, err)
		}
		s.store.set(key, sv)
		s.observer.OnEvent(ctx, observability.NewEvent(
			EventStateCommit,
			observability.LevelVerbose,
			"state",
			map[string]any{"key": key},
		))
	}

	for _, obs := range s.observers[key] {
		v := update.Value
		s.dispatcher.Go(ctx, "state", func(ctx context.Context) error {
			return obs.Notify(ctx, v)
		})
	}
	return nil
}

func (s *State) addObserver(key string, obs *property.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.observers[key], obs) {
		return
	}
	s.observers[key] = append(s.observers[key], obs)
}

func (s *State) removeObserver(key string, obs *property.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	observers, exists := s.observers[key]
	if !exists {
		return
	}

	observers = slices.DeleteFunc(observers, func(existing *property.Observer) bool {
		return existing == obs
	})
	if len(observers) == 0 {
		delete(s.observers, key)
		return
	}
	s.observers[key] = observers
}

func (s *State) observerCount(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers[key])
}
