package storage

import "github.com/tailored-agentic-units/provisionality/observability"

const (
	EventSet    observability.EventType = "storage.set"
	EventDelete observability.EventType = "storage.delete"
)
