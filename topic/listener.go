package topic

import "context"

// ListenerFunc handles a dispatched message.
type ListenerFunc func(ctx context.Context, data any) error

// Listener is a registration handle. Topics compare handles by pointer.
type Listener struct {
	fn ListenerFunc
}

// NewListener wraps fn. A nil fn yields a handle that AddListener rejects.
func NewListener(fn ListenerFunc) *Listener {
	return &Listener{fn: fn}
}

func (l *Listener) valid() bool {
	return l != nil && l.fn != nil
}
