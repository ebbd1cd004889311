// Package ledger manages the fungible in-economy currency. The engine keeps
// no per-holder balances: coins exist only as parcels carried by callers.
// Payments are destroyed outright and payouts freshly minted; circulating
// supply is whatever has been minted minus whatever has been burned.
package ledger

import (
	"context"
	"sync"

	"lifeledger/internal/domain"
	"lifeledger/internal/platform/metrics"
	dErrors "lifeledger/pkg/domain-errors"
)

// Service holds the exchange rate and the accumulated settlement pool.
type Service struct {
	mu sync.Mutex

	coinDenom       string
	settlementDenom string
	rate            int64
	pool            int64

	metrics *metrics.Metrics
}

func NewService(coinDenom, settlementDenom string, rate int64, m *metrics.Metrics) (*Service, error) {
	if rate <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "coin rate must be bigger than zero")
	}
	return &Service{
		coinDenom:       coinDenom,
		settlementDenom: settlementDenom,
		rate:            rate,
		metrics:         m,
	}, nil
}

// CoinDenom returns the internal currency denomination.
func (s *Service) CoinDenom() string { return s.coinDenom }

// SettlementDenom returns the external settlement denomination.
func (s *Service) SettlementDenom() string { return s.settlementDenom }

// BuyCoins converts a settlement parcel into coins at the current rate. The
// settlement parcel is retained whole in the pool; the computed coin amount
// is integer division, truncated.
func (s *Service) BuyCoins(_ context.Context, settlement domain.CoinParcel) (domain.CoinParcel, error) {
	if settlement.Denom != s.settlementDenom {
		return domain.CoinParcel{}, dErrors.New(dErrors.CodeWrongDenomination, "wrong coin")
	}
	if settlement.Amount < 0 {
		return domain.CoinParcel{}, dErrors.New(dErrors.CodeBadRequest, "negative amount")
	}

	s.mu.Lock()
	coinAmount := settlement.Amount / s.rate
	s.pool += settlement.Amount
	s.mu.Unlock()

	return s.Mint(coinAmount), nil
}

// RetainSettlement takes an exact settlement amount out of the presented
// parcel into the pool and returns the change. Used by primary sales priced
// in the settlement asset.
func (s *Service) RetainSettlement(_ context.Context, payment domain.CoinParcel, amount int64) (domain.CoinParcel, error) {
	if payment.Denom != s.settlementDenom {
		return domain.CoinParcel{}, dErrors.New(dErrors.CodeWrongDenomination, "wrong coin")
	}
	taken, change, err := payment.Take(amount)
	if err != nil {
		return domain.CoinParcel{}, err
	}

	s.mu.Lock()
	s.pool += taken.Amount
	s.mu.Unlock()

	return change, nil
}

// SetRate updates the settlement-to-coin exchange rate. Owner only.
func (s *Service) SetRate(_ context.Context, rate int64) error {
	if rate <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "coin rate must be bigger than zero")
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// WithdrawPool drains the entire accumulated settlement pool. Owner only.
func (s *Service) WithdrawPool(_ context.Context) (domain.CoinParcel, error) {
	s.mu.Lock()
	amount := s.pool
	s.pool = 0
	s.mu.Unlock()
	return domain.CoinParcel{Denom: s.settlementDenom, Amount: amount}, nil
}

// Mint creates new coins. Engine-internal: every call site corresponds to an
// economic event (sale settlement, mortgage payout, rate conversion).
func (s *Service) Mint(amount int64) domain.CoinParcel {
	if s.metrics != nil && amount > 0 {
		s.metrics.CoinsMinted.Add(float64(amount))
	}
	return domain.CoinParcel{Denom: s.coinDenom, Amount: amount}
}

// BurnExact destroys exactly amount coins from the presented parcel and
// returns the change. No registry of destroyed amounts is kept.
func (s *Service) BurnExact(payment domain.CoinParcel, amount int64) (domain.CoinParcel, error) {
	if payment.Denom != s.coinDenom {
		return domain.CoinParcel{}, dErrors.New(dErrors.CodeWrongDenomination, "wrong coin")
	}
	taken, change, err := payment.Take(amount)
	if err != nil {
		return domain.CoinParcel{}, err
	}
	if s.metrics != nil && taken.Amount > 0 {
		s.metrics.CoinsBurned.Add(float64(taken.Amount))
	}
	return change, nil
}

// BurnAll destroys the whole presented parcel.
func (s *Service) BurnAll(payment domain.CoinParcel) error {
	if payment.Denom != s.coinDenom {
		return dErrors.New(dErrors.CodeWrongDenomination, "wrong coin")
	}
	if payment.Amount < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "negative amount")
	}
	if s.metrics != nil && payment.Amount > 0 {
		s.metrics.CoinsBurned.Add(float64(payment.Amount))
	}
	return nil
}
