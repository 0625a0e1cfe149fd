package property

import "context"

// ObserverFunc receives a property value.
type ObserverFunc func(ctx context.Context, value any) error

// Observer is a registration handle around an ObserverFunc. Properties key
// registrations by the handle pointer, so keep the handle to remove it later.
type Observer struct {
	fn ObserverFunc
}

// NewObserver wraps fn. A nil fn yields a handle every Property rejects.
func NewObserver(fn ObserverFunc) *Observer {
	return &Observer{fn: fn}
}

// Notify invokes the wrapped function.
func (o *Observer) Notify(ctx context.Context, value any) error {
	return o.fn(ctx, value)
}

func (o *Observer) valid() bool {
	return o != nil && o.fn != nil
}

// Valid reports whether the handle can be registered. Property
// implementations outside this package use it to reject nil observers.
func Valid(obs *Observer) bool {
	return obs.valid()
}
