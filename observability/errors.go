package observability

import "errors"

// ErrUnknownObserver is returned for names missing from the registry.
var ErrUnknownObserver = errors.New("unknown observer")
