package escrow

import (
	"context"
	"sync"

	"lifeledger/internal/domain"
	"lifeledger/pkg/platform/sentinel"
)

type assetKey struct {
	kind domain.RegistryKind
	id   uint64
}

type InMemoryStore struct {
	mu            sync.RWMutex
	receipts      map[assetKey]Receipt
	states        map[assetKey]ListingState
	lastReceiptID uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		receipts: make(map[assetKey]Receipt),
		states:   make(map[assetKey]ListingState),
	}
}

func (s *InMemoryStore) CreateReceipt(_ context.Context, receipt *Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReceiptID++
	receipt.ID = s.lastReceiptID
	s.receipts[assetKey{receipt.Kind, receipt.ID}] = *receipt
	return nil
}

func (s *InMemoryStore) GetReceipt(_ context.Context, kind domain.RegistryKind, id uint64) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	receipt, ok := s.receipts[assetKey{kind, id}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &receipt, nil
}

func (s *InMemoryStore) DeleteReceipt(_ context.Context, kind domain.RegistryKind, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assetKey{kind, id}
	if _, ok := s.receipts[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.receipts, key)
	return nil
}

func (s *InMemoryStore) LatestReceiptByAsset(_ context.Context, kind domain.RegistryKind, assetID uint64) (*Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Receipt
	for key, receipt := range s.receipts {
		if key.kind != kind || receipt.AssetID != assetID {
			continue
		}
		if latest == nil || receipt.ID > latest.ID {
			r := receipt
			latest = &r
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *InMemoryStore) ListingState(_ context.Context, kind domain.RegistryKind, assetID uint64) (ListingState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[assetKey{kind, assetID}]
	if !ok {
		return StateNotListed, nil
	}
	return state, nil
}

func (s *InMemoryStore) SetListingState(_ context.Context, kind domain.RegistryKind, assetID uint64, state ListingState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := assetKey{kind, assetID}
	if state == StateNotListed {
		delete(s.states, key)
		return nil
	}
	s.states[key] = state
	return nil
}
