package topic

import (
	"context"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/observability"
)

// Registry indexes Topics by name and creates them on first use. All
// Topics in a Registry share its dispatcher and observer.
type Registry struct {
	mu         sync.RWMutex
	topics     map[string]*Topic
	dispatcher *dispatch.Dispatcher
	observer   observability.Observer
}

// NewRegistry creates an empty Registry. A nil dispatcher means
// dispatch.Default; a nil observer discards events.
func NewRegistry(d *dispatch.Dispatcher, observer observability.Observer) *Registry {
	if d == nil {
		d = dispatch.Default()
	}
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	return &Registry{
		topics:     make(map[string]*Topic),
		dispatcher: d,
		observer:   observer,
	}
}

// Get returns the Topic registered under name, creating it if needed.
func (r *Registry) Get(name string) *Topic {
	r.mu.RLock()
	t, exists := r.topics[name]
	r.mu.RUnlock()
	if exists {
		return t
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, exists := r.topics[name]; exists {
		return t
	}

	t = New(WithName(name), WithDispatcher(r.dispatcher), WithObserver(r.observer))
	r.topics[name] = t

	r.observer.OnEvent(context.Background(), observability.NewEvent(
		EventCreate,
		observability.LevelVerbose,
		"topic.registry",
		map[string]any{"topic": name},
	))
	return t
}

// Lookup returns the Topic under name without creating it.
func (r *Registry) Lookup(name string) (*Topic, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.topics[name]
	return t, exists
}

// Names returns the registered topic names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.topics))
	for name := range r.topics {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}
