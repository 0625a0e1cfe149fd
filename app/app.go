// Package app assembles the standard container layout: an App, a Session and
// a Client, each with its own State and topics, all backed by one shared
// store.
//
//	cfg, err := app.LoadConfig("provisionality.json")
//	a, err := app.New(cfg)
//	a.Session().Topic("login").Dispatch(ctx, map[string]any{"user": "alice"})
//	a.Wait()
package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/provisionality/dispatch"
	"github.com/tailored-agentic-units/provisionality/observability"
	"github.com/tailored-agentic-units/provisionality/property"
	"github.com/tailored-agentic-units/provisionality/state"
	"github.com/tailored-agentic-units/provisionality/storage"
	"github.com/tailored-agentic-units/provisionality/topic"
	"github.com/tailored-agentic-units/provisionality/transform"
)

// Option configures an App before its containers are built.
type Option func(*App)

// WithDispatcher overrides the App dispatcher.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(a *App) { a.dispatcher = d }
}

// WithObserver adds o next to the configured observers of the App and of
// all three States. Events reach both through a MultiObserver.
func WithObserver(o observability.Observer) Option {
	return func(a *App) { a.extra = o }
}

// WithStore overrides the shared backing store.
func WithStore(s *state.Store) Option {
	return func(a *App) { a.store = s }
}

// WithStorage overrides the config-created key/value storage.
func WithStorage(kv *storage.KeyValue) Option {
	return func(a *App) { a.storage = kv }
}

// App is the root container. It owns the dispatcher, the shared store and
// the Session and Client containers.
type App struct {
	*Container

	session *Container
	client  *Container

	store      *state.Store
	storage    *storage.KeyValue
	dispatcher *dispatch.Dispatcher
	observer   observability.Observer
	extra      observability.Observer
}

// New creates an App from configuration. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) (*App, error) {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	observer, err := observability.Resolve(c.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	a := &App{
		store:    state.NewStore(),
		observer: observer,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.observer = a.withExtra(a.observer)

	if a.dispatcher == nil {
		a.dispatcher = dispatch.New(a.observer)
	}

	if err := a.store.Seed(c.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	if a.storage == nil {
		backend, err := storage.NewStore(&c.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		a.storage = storage.New(storage.WithStore(backend), storage.WithObserver(a.observer))
	}

	appID := c.ID
	if appID == "" {
		appID = uuid.NewString()
	}

	if a.Container, err = a.newContainer(appID, appID, ScopeApp, &c.App); err != nil {
		return nil, err
	}
	if a.session, err = a.newContainer(uuid.NewString(), appID, ScopeSession, &c.Session); err != nil {
		return nil, err
	}
	if a.client, err = a.newContainer(uuid.NewString(), appID, ScopeClient, &c.Client); err != nil {
		return nil, err
	}

	for i, rc := range c.Reflectors {
		if err := a.install(rc); err != nil {
			return nil, fmt.Errorf("failed to install reflector %d: %w", i, err)
		}
	}

	a.observer.OnEvent(context.Background(), observability.NewEvent(
		EventCreate,
		observability.LevelInfo,
		"app",
		map[string]any{
			"id":         a.id,
			"session":    a.session.id,
			"client":     a.client.id,
			"reflectors": len(c.Reflectors),
		},
	))

	return a, nil
}

// withExtra pairs configured with the WithObserver override, if any.
func (a *App) withExtra(configured observability.Observer) observability.Observer {
	if a.extra == nil {
		return configured
	}
	return observability.NewMultiObserver(configured, a.extra)
}

func (a *App) newContainer(id, appID, scope string, cfg *state.Config) (*Container, error) {
	configured, err := observability.Resolve(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s observer: %w", scope, err)
	}

	s, err := state.New(cfg,
		state.WithStore(a.store),
		state.WithDispatcher(a.dispatcher),
		state.WithObserver(a.withExtra(configured)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s state: %w", scope, err)
	}

	return &Container{
		id:     id,
		appID:  appID,
		scope:  scope,
		state:  s,
		topics: topic.NewRegistry(a.dispatcher, a.observer),
	}, nil
}

// install compiles rc and attaches it to the target State.
func (a *App) install(rc ReflectorConfig) error {
	target, err := a.Scope(rc.Scope)
	if err != nil {
		return err
	}

	fn, err := transform.Compile(transform.Engine(rc.Engine), rc.Source)
	if err != nil {
		return err
	}

	switch {
	case rc.Topic != "" && rc.Property == "":
		err = target.State().AddTopicReflector(target.Topic(rc.Topic), fn)
	case rc.Property != "" && rc.Topic == "":
		from := target
		if rc.FromScope != "" {
			if from, err = a.Scope(rc.FromScope); err != nil {
				return err
			}
		}
		var source property.Property = from.State().Property(rc.Property)
		err = target.State().AddPropertyReflector(source, fn)
	default:
		return ErrInvalidReflector
	}
	if err != nil {
		return err
	}

	a.observer.OnEvent(context.Background(), observability.NewEvent(
		EventReflectorInstall,
		observability.LevelVerbose,
		"app",
		map[string]any{
			"scope":    rc.Scope,
			"topic":    rc.Topic,
			"property": rc.Property,
			"engine":   rc.Engine,
		},
	))
	return nil
}

// Session returns the session container.
func (a *App) Session() *Container { return a.session }

// Client returns the client container.
func (a *App) Client() *Container { return a.client }

// Storage returns the key/value storage.
func (a *App) Storage() *storage.KeyValue { return a.storage }

// Store returns the store shared by all three States.
func (a *App) Store() *state.Store { return a.store }

// Scope returns the container with the given scope name.
func (a *App) Scope(name string) (*Container, error) {
	switch name {
	case ScopeApp:
		return a.Container, nil
	case ScopeSession:
		return a.session, nil
	case ScopeClient:
		return a.client, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
}

// Metrics returns the App dispatcher's task counters.
func (a *App) Metrics() dispatch.MetricsSnapshot {
	return a.dispatcher.Metrics()
}

// Wait blocks until every pending notification has been delivered.
func (a *App) Wait() {
	a.dispatcher.Wait()
}
