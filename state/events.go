package state

import "github.com/tailored-agentic-units/provisionality/observability"

const (
	EventStateCreate  observability.EventType = "state.create"
	EventStateCommit  observability.EventType = "state.commit"
	EventStateDelete  observability.EventType = "state.delete"
	EventReflectorAdd observability.EventType = "state.reflector.add"
)
