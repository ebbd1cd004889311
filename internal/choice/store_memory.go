package choice

import (
	"context"
	"sync"

	"lifeledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	prices map[string]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{prices: make(map[string]int64)}
}

func (s *InMemoryStore) Upsert(_ context.Context, name string, price int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[name] = price
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prices, name)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	price, ok := s.prices[name]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return price, nil
}
