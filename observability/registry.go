package observability

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
		"slog": NewSlogObserver(slog.Default()),
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name.
// "noop" and "slog" are always available.
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	obs, exists := observers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObserver, name)
	}
	return obs, nil
}

// Resolve turns a config value into an Observer. The value is a
// comma-separated list of registered names: "" means "slog", one name is
// returned as is, several fan out through a MultiObserver in list order.
//
//	Resolve("slog,audit")
func Resolve(names string) (Observer, error) {
	if strings.TrimSpace(names) == "" {
		return GetObserver("slog")
	}

	parts := strings.Split(names, ",")
	resolved := make([]Observer, 0, len(parts))
	for _, part := range parts {
		obs, err := GetObserver(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, obs)
	}

	if len(resolved) == 1 {
		return resolved[0], nil
	}
	return NewMultiObserver(resolved...), nil
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}
