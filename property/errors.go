package property

import "errors"

// ErrNilObserver is returned when a nil observer is registered or removed.
var ErrNilObserver = errors.New("observer is not callable")
