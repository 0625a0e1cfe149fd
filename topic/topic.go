// Package topic provides fan-out broadcasters.
//
// A Topic holds an ordered set of listeners. Dispatch queues one task per
// listener on the dispatcher, in insertion order, and returns without
// waiting. Listener errors and panics are reported by the dispatcher and go
// no further.
//
// Listeners added or removed while a Dispatch is scheduling may or may not
// receive that message. Either outcome is safe.
package topic

import (
	"context"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/observability"
)

// Option configures a Topic.
type Option func(*Topic)

// WithName labels the topic in events.
func WithName(name string) Option {
	return func(t *Topic) { t.name = name }
}

// WithDispatcher overrides dispatch.Default.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(t *Topic) {
		if d != nil {
			t.dispatcher = d
		}
	}
}

// WithObserver sets the observer for dispatch events. Listener failures are
// reported by the dispatcher, not here.
func WithObserver(o observability.Observer) Option {
	return func(t *Topic) {
		if o != nil {
			t.observer = o
		}
	}
}

// Topic broadcasts messages to listeners.
type Topic struct {
	name       string
	listeners  []*Listener
	mu         sync.RWMutex
	dispatcher *dispatch.Dispatcher
	observer   observability.Observer
}

// New creates an empty Topic.
func New(opts ...Option) *Topic {
	t := &Topic{
		dispatcher: dispatch.Default(),
		observer:   observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the label given with WithName.
func (t *Topic) Name() string {
	return t.name
}

// AddListener registers l. Registering the same handle again has no effect.
func (t *Topic) AddListener(l *Listener) error {
	if !l.valid() {
		return ErrNilListener
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if slices.Contains(t.listeners, l) {
		return nil
	}
	t.listeners = append(t.listeners, l)
	return nil
}

// RemoveListener unregisters l. Unknown handles are ignored.
func (t *Topic) RemoveListener(l *Listener) error {
	if !l.valid() {
		return ErrNilListener
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.listeners = slices.DeleteFunc(t.listeners, func(existing *Listener) bool {
		return existing == l
	})
	return nil
}

// Len returns the number of registered listeners.
func (t *Topic) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.listeners)
}

// Dispatch schedules every listener with data in registration order and
// returns immediately. The listeners share data; it is not copied.
func (t *Topic) Dispatch(ctx context.Context, data any) {
	t.mu.RLock()
	listeners := slices.Clone(t.listeners)
	t.mu.RUnlock()

	source := "topic"
	if t.name != "" {
		source = "topic." + t.name
	}

	for _, l := range listeners {
		t.dispatcher.Go(ctx, source, func(ctx context.Context) error {
			return l.fn(ctx, data)
		})
	}

	t.observer.OnEvent(ctx, observability.NewEvent(
		EventDispatch,
		observability.LevelVerbose,
		source,
		map[string]any{"listeners": len(listeners)},
	))
}
