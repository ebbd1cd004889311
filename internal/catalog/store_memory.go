package catalog

import (
	"context"
	"sort"
	"sync"

	"lifeledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]Entry)}
}

func (s *InMemoryStore) Create(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.Name]; exists {
		return sentinel.ErrConflict
	}
	s.entries[entry.Name] = *entry
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, name string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[name]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

func (s *InMemoryStore) Update(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[entry.Name]; !exists {
		return sentinel.ErrNotFound
	}
	s.entries[entry.Name] = *entry
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]*Entry, 0, len(names))
	for _, name := range names {
		entry := s.entries[name]
		entries = append(entries, &entry)
	}
	return entries, nil
}
