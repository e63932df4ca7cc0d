package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for tests and local development
// without Redis. State does not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[id], nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, id string, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = state
	return nil
}

// ClearHistory implements Store.
func (s *MemoryStore) ClearHistory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[id]
	state.ConversationHistory = nil
	s.states[id] = state
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
