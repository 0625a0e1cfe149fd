package state

import "errors"

// Sentinel errors for State contract violations.
var (
	ErrImmutable    = errors.New("cannot modify immutable state")
	ErrNilTransform = errors.New("transform is not callable")
	ErrNilSource    = errors.New("reflector source is nil")
)
