package app

import "github.com/tailored-agentic-units/provisionality/observability"

const (
	EventCreate           observability.EventType = "app.create"
	EventReflectorInstall observability.EventType = "app.reflector.install"
)
