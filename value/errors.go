package value

import "errors"

// ErrNotRepresentable is returned when a value has no JSON-shaped form.
var ErrNotRepresentable = errors.New("value is not representable")
