package state

import (
	"github.com/tailored-agentic-units/provisionality/property"
	"github.com/tailored-agentic-units/provisionality/value"
)

// View is the live Property of one State key.
//
// Unlike property.Constant, AddObserver does not deliver the current value;
// observers hear only about changes committed after they register. Observers
// belong to the key, not the View, so any View of the same name can remove
// an observer another View added.
type View struct {
	state *State
	key   string
}

var _ property.Property = (*View)(nil)

// Key returns the resolved store key (prefix + name).
func (v *View) Key() string {
	if v == nil {
		return ""
	}
	return v.key
}

// Value decodes the current store entry. ok is false when the key is absent.
func (v *View) Value() (any, bool) {
	if !v.bound() {
		return nil, false
	}
	sv, ok := v.state.store.lookup(v.key)
	if !ok {
		return nil, false
	}
	return value.Decode(sv), true
}

// AddObserver registers obs for future changes of the key.
func (v *View) AddObserver(obs *property.Observer) error {
	if !v.bound() {
		return ErrNilSource
	}
	if !property.Valid(obs) {
		return property.ErrNilObserver
	}
	v.state.addObserver(v.key, obs)
	return nil
}

// RemoveObserver unregisters obs. The key's observer set is dropped once empty.
func (v *View) RemoveObserver(obs *property.Observer) error {
	if !v.bound() {
		return ErrNilSource
	}
	if !property.Valid(obs) {
		return property.ErrNilObserver
	}
	v.state.removeObserver(v.key, obs)
	return nil
}

// Observers returns how many observers are registered for the key.
func (v *View) Observers() int {
	if !v.bound() {
		return 0
	}
	return v.state.observerCount(v.key)
}

// bound reports whether v came from State.Property. A nil or zero View has
// no State behind it.
func (v *View) bound() bool {
	return v != nil && v.state != nil
}
