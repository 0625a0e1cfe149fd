package state

import "sort"

// Update assigns Value to the property Name. A nil Value deletes the property.
type Update struct {
	Name  string
	Value any
}

// Change is the ordered list of updates a Transform produces for one
// emission. Updates are committed in order.
type Change []Update

// Set appends an assignment and returns the extended Change.
func (c Change) Set(name string, v any) Change {
	return append(c, Update{Name: name, Value: v})
}

// Delete appends a removal and returns the extended Change.
func (c Change) Delete(name string) Change {
	return append(c, Update{Name: name})
}

// ChangeFromMap converts m into a Change ordered by name, since Go maps have
// no insertion order.
func ChangeFromMap(m map[string]any) Change {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	c := make(Change, 0, len(names))
	for _, name := range names {
		c = append(c, Update{Name: name, Value: m[name]})
	}
	return c
}

// Transform maps a topic payload or property value to a Change. A nil Change
// commits nothing. A returned error aborts the emission and is logged.
type Transform func(data any) (Change, error)
