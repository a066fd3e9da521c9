package session

import (
	"context"
	"sync"

	"github.com/dmitrymomot/socialauth/pkg/provider"
)

// MemoryStore keeps the record in process memory.
type MemoryStore struct {
	kind provider.Kind
	mu   sync.RWMutex
}

// NewMemoryStore creates a store, optionally seeded with a remembered kind.
func NewMemoryStore(seed ...provider.Kind) *MemoryStore {
	s := &MemoryStore{}
	if len(seed) > 0 {
		s.kind = seed[0]
	}
	return s
}

// Load returns the remembered kind.
func (s *MemoryStore) Load(_ context.Context) (provider.Kind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.kind == "" {
		return "", ErrNotFound
	}
	return s.kind, nil
}

// Save remembers kind.
func (s *MemoryStore) Save(_ context.Context, kind provider.Kind) error {
	if err := validKind(kind); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = kind
	return nil
}

// Clear forgets the remembered kind.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = ""
	return nil
}

var _ Store = (*MemoryStore)(nil)
