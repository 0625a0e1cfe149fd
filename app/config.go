package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"github.com/tailored-agentic-units/provisionality/state"
	"github.com/tailored-agentic-units/provisionality/storage"
)

// EnvPrefix namespaces environment overrides, e.g. PROVISIONALITY_SESSION_PREFIX.
const EnvPrefix = "PROVISIONALITY_"

// Config holds initialization parameters for an App and its containers.
type Config struct {
	// ID identifies the App. Empty means a random UUID.
	ID string `json:"id,omitempty" env:"ID"`

	// Observer names the observer used by the dispatcher and topics.
	Observer string `json:"observer,omitempty" env:"OBSERVER"`

	App     state.Config   `json:"app" envPrefix:"APP_"`
	Session state.Config   `json:"session" envPrefix:"SESSION_"`
	Client  state.Config   `json:"client" envPrefix:"CLIENT_"`
	Storage storage.Config `json:"storage" envPrefix:"STORAGE_"`

	// Seed holds initial values for the shared store, keyed by resolved key
	// (prefix included).
	Seed map[string]any `json:"seed,omitempty"`

	Reflectors []ReflectorConfig `json:"reflectors,omitempty" envPrefix:"REFLECTORS_"`
}

// ReflectorConfig declares a reflector installed on the State of Scope.
// Exactly one of Topic or Property names the source. Property sources are
// read from FromScope, which defaults to Scope.
type ReflectorConfig struct {
	Scope     string `json:"scope" env:"SCOPE"`
	Topic     string `json:"topic,omitempty" env:"TOPIC"`
	Property  string `json:"property,omitempty" env:"PROPERTY"`
	FromScope string `json:"from_scope,omitempty" env:"FROM_SCOPE"`
	Engine    string `json:"engine,omitempty" env:"ENGINE"`
	Source    string `json:"source" env:"SOURCE"`
}

// DefaultConfig returns the default container layout: one shared store
// partitioned by the app., session. and client. prefixes.
func DefaultConfig() Config {
	appCfg := state.DefaultConfig()
	appCfg.Prefix = "app."

	sessionCfg := state.DefaultConfig()
	sessionCfg.Prefix = "session."

	clientCfg := state.DefaultConfig()
	clientCfg.Prefix = "client."

	return Config{
		Observer: "slog",
		App:      appCfg,
		Session:  sessionCfg,
		Client:   clientCfg,
		Storage:  storage.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// section's Merge method.
func (c *Config) Merge(source *Config) {
	if source.ID != "" {
		c.ID = source.ID
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}

	c.App.Merge(&source.App)
	c.Session.Merge(&source.Session)
	c.Client.Merge(&source.Client)
	c.Storage.Merge(&source.Storage)

	if len(source.Seed) > 0 {
		if c.Seed == nil {
			c.Seed = make(map[string]any, len(source.Seed))
		}
		for k, v := range source.Seed {
			c.Seed[k] = v
		}
	}

	if len(source.Reflectors) > 0 {
		c.Reflectors = append(c.Reflectors, source.Reflectors...)
	}
}

// LoadConfig merges defaults, the JSON file (when filename is not empty) and
// PROVISIONALITY_* environment variables, in that order.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var loaded Config
		if err := json.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.Merge(&loaded)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}
