package app

import "errors"

// Sentinel errors for container construction.
var (
	ErrUnknownScope     = errors.New("unknown scope")
	ErrInvalidReflector = errors.New("reflector needs exactly one of topic or property")
)
