// Package property defines observable single values.
//
// Two kinds implement Property. Constant, built here, holds a snapshot taken
// at construction and notifies each new observer exactly once with it. The
// State-backed view returned by state.State.Property is live: it never
// notifies on registration but notifies on every later change of its key.
// The two behave differently under the same AddObserver name; callers that
// need the current value of a live view should read Value first.
package property

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/value"
)

// Property is an observable value.
type Property interface {
	// Value returns a fresh copy of the current value. ok is false when there
	// is no value.
	Value() (v any, ok bool)
	// AddObserver registers obs. Returns ErrNilObserver for a nil or empty handle.
	AddObserver(obs *Observer) error
	// RemoveObserver unregisters obs. Unknown observers are ignored.
	RemoveObserver(obs *Observer) error
}

// Option configures a Constant.
type Option func(*Constant)

// WithDispatcher overrides dispatch.Default for observer notifications.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(c *Constant) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// Constant is a Property whose value never changes.
type Constant struct {
	snapshot   *structpb.Value
	dispatcher *dispatch.Dispatcher
}

var _ Property = (*Constant)(nil)

// New snapshots v into a Constant. Later changes to v are not seen.
func New(v any, opts ...Option) (*Constant, error) {
	snapshot, err := value.Encode(v)
	if err != nil {
		return nil, err
	}

	c := &Constant{
		snapshot:   snapshot,
		dispatcher: dispatch.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Value decodes a new copy of the snapshot on every call.
func (c *Constant) Value() (any, bool) {
	return value.Decode(c.snapshot), true
}

// AddObserver schedules a single notification carrying the snapshot. No
// registration is kept.
func (c *Constant) AddObserver(obs *Observer) error {
	if !obs.valid() {
		return ErrNilObserver
	}

	v, _ := c.Value()
	c.dispatcher.Go(context.Background(), "property", func(ctx context.Context) error {
		return obs.Notify(ctx, v)
	})
	return nil
}

// RemoveObserver is a no-op: a Constant never notifies after registration.
func (c *Constant) RemoveObserver(obs *Observer) error {
	return nil
}
