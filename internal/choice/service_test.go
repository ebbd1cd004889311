package choice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/audit"
	"lifeledger/internal/domain"
	"lifeledger/internal/ledger"
	dErrors "lifeledger/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	coins, err := ledger.NewService("LLC", "STL", 7, nil)
	require.NoError(t, err)
	events := audit.NewInMemoryStore()
	return NewService(NewInMemoryStore(), coins, audit.NewPublisher(events), nil), events
}

func priceOf(v int64) *int64 { return &v }

// recordedEvents drains the in-memory audit store.
func recordedEvents(t *testing.T, store *audit.InMemoryStore) []audit.Event {
	t.Helper()
	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	return events
}

func TestAddChoice(t *testing.T) {
	ctx := context.Background()

	t.Run("upsert and read back", func(t *testing.T) {
		svc, _ := newService(t)
		require.NoError(t, svc.AddChoice(ctx, "career", priceOf(50)))

		price, err := svc.Price(ctx, "career")
		require.NoError(t, err)
		assert.Equal(t, int64(50), price)

		require.NoError(t, svc.AddChoice(ctx, "career", priceOf(75)))
		price, err = svc.Price(ctx, "career")
		require.NoError(t, err)
		assert.Equal(t, int64(75), price)
	})

	t.Run("nil price deletes", func(t *testing.T) {
		svc, _ := newService(t)
		require.NoError(t, svc.AddChoice(ctx, "career", priceOf(50)))
		require.NoError(t, svc.AddChoice(ctx, "career", nil))

		_, err := svc.Price(ctx, "career")
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	})

	t.Run("rejects empty name and negative price", func(t *testing.T) {
		svc, _ := newService(t)
		assert.True(t, dErrors.Is(svc.AddChoice(ctx, "  ", priceOf(5)), dErrors.CodeBadRequest))
		assert.True(t, dErrors.Is(svc.AddChoice(ctx, "career", priceOf(-1)), dErrors.CodeBadRequest))
	})
}

func TestMakeChoice(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown choice is a hard failure", func(t *testing.T) {
		svc, events := newService(t)
		_, err := svc.MakeChoice(ctx, 1, "career", "lawyer", nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
		assert.Empty(t, recordedEvents(t, events))
	})

	t.Run("free choice needs no payment", func(t *testing.T) {
		svc, events := newService(t)
		require.NoError(t, svc.AddChoice(ctx, "mood", priceOf(0)))

		change, err := svc.MakeChoice(ctx, 1, "mood", "happy", nil)
		require.NoError(t, err)
		assert.Nil(t, change)

		recorded := recordedEvents(t, events)
		require.Len(t, recorded, 1)
		assert.Equal(t, audit.ActionChoiceMade, recorded[0].Action)
		assert.Equal(t, uint64(1), recorded[0].PersonID)
		assert.Equal(t, "mood", recorded[0].Choice)
		assert.Equal(t, "happy", recorded[0].Selector)
	})

	t.Run("priced choice burns the price and returns change", func(t *testing.T) {
		svc, _ := newService(t)
		require.NoError(t, svc.AddChoice(ctx, "career", priceOf(50)))

		change, err := svc.MakeChoice(ctx, 1, "career", "lawyer",
			&domain.CoinParcel{Denom: "LLC", Amount: 80})
		require.NoError(t, err)
		require.NotNil(t, change)
		assert.Equal(t, int64(30), change.Amount)
	})

	t.Run("priced choice rejects missing or short payment", func(t *testing.T) {
		svc, events := newService(t)
		require.NoError(t, svc.AddChoice(ctx, "career", priceOf(50)))

		_, err := svc.MakeChoice(ctx, 1, "career", "lawyer", nil)
		assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientFunds))

		_, err = svc.MakeChoice(ctx, 1, "career", "lawyer",
			&domain.CoinParcel{Denom: "LLC", Amount: 49})
		assert.True(t, dErrors.Is(err, dErrors.CodeInsufficientFunds))

		_, err = svc.MakeChoice(ctx, 1, "career", "lawyer",
			&domain.CoinParcel{Denom: "STL", Amount: 50})
		assert.True(t, dErrors.Is(err, dErrors.CodeWrongDenomination))

		assert.Empty(t, recordedEvents(t, events))
	})
}
