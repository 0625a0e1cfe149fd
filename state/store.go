package state

import (
	"fmt"
	"sort"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/provisionality/value"
)

// Store is the backing store of one or more States: resolved key to value
// snapshot. States sharing a Store see each other's writes; their prefixes
// decide which keys each one addresses. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[string]*structpb.Value
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]*structpb.Value)}
}

// Seed snapshots each entry of values into the store under its key as given.
// Keys are resolved keys; include the prefix of the State that should see them.
func (s *Store) Seed(values map[string]any) error {
	encoded := make(map[string]*structpb.Value, len(values))
	for key, v := range values {
		sv, err := value.Encode(v)
		if err != nil {
			return fmt.Errorf("seed %q: %w", key, err)
		}
		encoded[key] = sv
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sv := range encoded {
		s.values[key] = sv
	}
	return nil
}

// Get returns a copy of the snapshot stored under key.
func (s *Store) Get(key string) (*structpb.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sv, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return proto.Clone(sv).(*structpb.Value), true
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]
	return ok
}

// Keys returns every key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *Store) set(key string, sv *structpb.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = sv
}

func (s *Store) delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.values[key]
	delete(s.values, key)
	return existed
}

func (s *Store) lookup(key string) (*structpb.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sv, ok := s.values[key]
	return sv, ok
}
