package storage

import "fmt"

// BackendMemory selects NewMemoryStore.
const BackendMemory = "memory"

// Config holds storage initialization parameters.
type Config struct {
	Backend string `json:"backend,omitempty" env:"BACKEND"`
}

// DefaultConfig returns the in-memory configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendMemory}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
}

// NewStore creates a Store from configuration.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
