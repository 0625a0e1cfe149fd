package dispatch

import "github.com/tailored-agentic-units/provisionality/observability"

const (
	EventTaskFailed observability.EventType = "dispatch.task.failed"
	EventTaskPanic  observability.EventType = "dispatch.task.panic"
)
