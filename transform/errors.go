package transform

import "errors"

// Sentinel errors for transform compilation and evaluation.
var (
	ErrUnknownEngine = errors.New("unknown transform engine")
	ErrEmptySource   = errors.New("transform source is empty")
	ErrInvalidResult = errors.New("transform result is not a change")
)
