package choice

import (
	"context"
	"errors"
	"strings"

	"lifeledger/internal/audit"
	"lifeledger/internal/domain"
	"lifeledger/internal/ledger"
	"lifeledger/internal/platform/metrics"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/platform/sentinel"
)

// Service exposes the priced choice table.
type Service struct {
	store   Store
	coins   *ledger.Service
	auditor *audit.Publisher
	metrics *metrics.Metrics
}

func NewService(store Store, coins *ledger.Service, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, coins: coins, auditor: auditor, metrics: m}
}

// AddChoice upserts a price-table entry. A nil price deletes the entry.
func (s *Service) AddChoice(ctx context.Context, name string, price *int64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "choice name can't be empty")
	}
	if price == nil {
		if err := s.store.Delete(ctx, name); err != nil {
			return dErrors.New(dErrors.CodeInternal, "failed to delete choice")
		}
		return nil
	}
	if *price < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "price can't be negative")
	}
	if err := s.store.Upsert(ctx, name, *price); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to store choice")
	}
	return nil
}

// Price returns the table price for a choice name.
func (s *Service) Price(ctx context.Context, name string) (int64, error) {
	price, err := s.store.Get(ctx, name)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.New(dErrors.CodeNotFound, "no such choice")
	}
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInternal, "failed to load choice")
	}
	return price, nil
}

// MakeChoice records a person's selection. A priced choice requires a
// matching payment, of which exactly the price is burned and the remainder
// returned as change. A free choice ignores payment entirely. The event
// always carries the selector.
func (s *Service) MakeChoice(ctx context.Context, personID uint64, name, selector string, payment *domain.CoinParcel) (*domain.CoinParcel, error) {
	price, err := s.Price(ctx, name)
	if err != nil {
		return nil, err
	}

	var change *domain.CoinParcel
	if price > 0 {
		if payment == nil {
			return nil, dErrors.New(dErrors.CodeInsufficientFunds, "this choice requires payment")
		}
		remainder, err := s.coins.BurnExact(*payment, price)
		if err != nil {
			return nil, err
		}
		change = &remainder
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionChoiceMade,
		PersonID: personID,
		Choice:   name,
		Selector: selector,
		Amount:   price,
	}); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ChoicesMade.Inc()
	}
	return change, nil
}
