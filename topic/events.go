package topic

import "github.com/tailored-agentic-units/provisionality/observability"

const (
	EventDispatch observability.EventType = "topic.dispatch"
	EventCreate   observability.EventType = "topic.create"
)
