package topic

import "errors"

// ErrNilListener is returned for a nil listener handle or function.
var ErrNilListener = errors.New("listener is not callable")
