package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/domain"
	dErrors "lifeledger/pkg/domain-errors"
)

func newLedger(t *testing.T, rate int64) *Service {
	t.Helper()
	svc, err := NewService("LLC", "STL", rate, nil)
	require.NoError(t, err)
	return svc
}

func TestNewServiceRejectsBadRate(t *testing.T) {
	_, err := NewService("LLC", "STL", 0, nil)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = NewService("LLC", "STL", -3, nil)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestBuyCoinsConversion(t *testing.T) {
	svc := newLedger(t, 10)

	coins, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 105})
	require.NoError(t, err)
	assert.Equal(t, domain.CoinParcel{Denom: "LLC", Amount: 10}, coins)

	pool, err := svc.WithdrawPool(context.Background())
	require.NoError(t, err)
	// The whole settlement parcel is retained, truncation and all.
	assert.Equal(t, domain.CoinParcel{Denom: "STL", Amount: 105}, pool)
}

func TestBuyCoinsIsLinear(t *testing.T) {
	svc := newLedger(t, 7)

	single, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 700})
	require.NoError(t, err)
	double, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 1400})
	require.NoError(t, err)

	assert.Equal(t, single.Amount*2, double.Amount)
}

func TestBuyCoinsWrongDenomination(t *testing.T) {
	svc := newLedger(t, 10)

	_, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "LLC", Amount: 100})
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongDenomination))
}

func TestSetRate(t *testing.T) {
	svc := newLedger(t, 10)

	require.NoError(t, svc.SetRate(context.Background(), 5))
	coins, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(20), coins.Amount)

	err = svc.SetRate(context.Background(), 0)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestWithdrawPoolDrains(t *testing.T) {
	svc := newLedger(t, 10)

	_, err := svc.BuyCoins(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 50})
	require.NoError(t, err)

	first, err := svc.WithdrawPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(50), first.Amount)

	second, err := svc.WithdrawPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.Amount)
}

func TestRetainSettlementReturnsChange(t *testing.T) {
	svc := newLedger(t, 10)

	change, err := svc.RetainSettlement(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 130}, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.CoinParcel{Denom: "STL", Amount: 30}, change)

	pool, err := svc.WithdrawPool(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), pool.Amount)
}

func TestRetainSettlementInsufficient(t *testing.T) {
	svc := newLedger(t, 10)

	_, err := svc.RetainSettlement(context.Background(), domain.CoinParcel{Denom: "STL", Amount: 99}, 100)
	assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientFunds))
}

func TestBurnExact(t *testing.T) {
	svc := newLedger(t, 10)

	change, err := svc.BurnExact(domain.CoinParcel{Denom: "LLC", Amount: 120}, 100)
	require.NoError(t, err)
	assert.Equal(t, domain.CoinParcel{Denom: "LLC", Amount: 20}, change)

	_, err = svc.BurnExact(domain.CoinParcel{Denom: "LLC", Amount: 50}, 100)
	assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientFunds))

	_, err = svc.BurnExact(domain.CoinParcel{Denom: "STL", Amount: 500}, 100)
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongDenomination))
}

func TestBurnAllWrongDenomination(t *testing.T) {
	svc := newLedger(t, 10)

	assert.NoError(t, svc.BurnAll(domain.CoinParcel{Denom: "LLC", Amount: 5}))
	err := svc.BurnAll(domain.CoinParcel{Denom: "STL", Amount: 5})
	assert.True(t, dErrors.Is(err, dErrors.CodeWrongDenomination))
}
