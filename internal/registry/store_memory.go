package registry

import (
	"context"
	"sync"

	"lifeledger/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	people       map[uint64]Person
	objects      map[uint64]Object
	lastPersonID uint64
	lastObjectID uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		people:  make(map[uint64]Person),
		objects: make(map[uint64]Object),
	}
}

func (s *InMemoryStore) CreatePerson(_ context.Context, person *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPersonID++
	person.ID = s.lastPersonID
	s.people[person.ID] = *person
	return nil
}

func (s *InMemoryStore) GetPerson(_ context.Context, id uint64) (*Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.people[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &person, nil
}

func (s *InMemoryStore) PutPerson(_ context.Context, person *Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.people[person.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.people[person.ID] = *person
	return nil
}

func (s *InMemoryStore) CreateObject(_ context.Context, object *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastObjectID++
	object.ID = s.lastObjectID
	s.objects[object.ID] = *object
	return nil
}

func (s *InMemoryStore) GetObject(_ context.Context, id uint64) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	object, ok := s.objects[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &object, nil
}

func (s *InMemoryStore) PutObject(_ context.Context, object *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[object.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.objects[object.ID] = *object
	return nil
}
