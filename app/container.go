package app

import (
	"github.com/tailored-agentic-units/provisionality/state"
	"github.com/tailored-agentic-units/provisionality/topic"
)

// Scope names a container within an App.
const (
	ScopeApp     = "app"
	ScopeSession = "session"
	ScopeClient  = "client"
)

// Container pairs a State with the topics that feed it. App, Session and
// Client are all Containers.
type Container struct {
	id     string
	appID  string
	scope  string
	state  *state.State
	topics *topic.Registry
}

// ID returns the container identifier.
func (c *Container) ID() string { return c.id }

// AppID returns the ID of the App that owns the container. For the App
// itself it equals ID.
func (c *Container) AppID() string { return c.appID }

// Name returns the scope the container was built for.
func (c *Container) Name() string { return c.scope }

// State returns the container's State.
func (c *Container) State() *state.State { return c.state }

// Topic returns the named topic, creating it on first use.
func (c *Container) Topic(name string) *topic.Topic {
	return c.topics.Get(name)
}

// Topics returns the container's topic registry.
func (c *Container) Topics() *topic.Registry { return c.topics }
