package state

// Config holds State construction parameters.
type Config struct {
	// Immutable locks out reflectors for the lifetime of the State.
	Immutable bool `json:"immutable,omitempty" env:"IMMUTABLE"`

	// Prefix is prepended to every property name to form the store key.
	Prefix string `json:"prefix,omitempty" env:"PREFIX"`

	// Observer names a registered observability.Observer ("slog", "noop", ...).
	Observer string `json:"observer,omitempty" env:"OBSERVER"`
}

// DefaultConfig returns a mutable, unprefixed configuration logging via slog.
func DefaultConfig() Config {
	return Config{
		Observer: "slog",
	}
}

// Merge applies non-zero values from source into c. Immutable can only be
// switched on by a merge, never off.
func (c *Config) Merge(source *Config) {
	if source.Immutable {
		c.Immutable = true
	}

	if source.Prefix != "" {
		c.Prefix = source.Prefix
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}
}
