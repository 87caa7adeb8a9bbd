package storage

import (
	"context"
	"sync"
)

// Memory is an in-process Backend. Contents are lost on restart, so it is
// only allowed outside production.
type Memory struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

// Scope returns the namespace for clientID.
func (m *Memory) Scope(clientID string) Storage {
	return &memoryScope{m: m, client: clientID}
}

type memoryScope struct {
	m      *Memory
	client string
}

func (s *memoryScope) GetItem(_ context.Context, key string) (string, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	return s.m.items[s.client][key], nil
}

func (s *memoryScope) SetItem(_ context.Context, key, value string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	ns, ok := s.m.items[s.client]
	if !ok {
		ns = make(map[string]string)
		s.m.items[s.client] = ns
	}
	ns[key] = value
	return nil
}

func (s *memoryScope) RemoveItem(_ context.Context, key string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	ns, ok := s.m.items[s.client]
	if !ok {
		return nil
	}
	delete(ns, key)
	if len(ns) == 0 {
		delete(s.m.items, s.client)
	}
	return nil
}

var _ Backend = (*Memory)(nil)
