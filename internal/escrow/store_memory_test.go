package escrow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/domain"
	"lifeledger/pkg/platform/sentinel"
)

func TestInMemoryStoreReceipts(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("one sequence across kinds", func(t *testing.T) {
		object := &Receipt{Kind: domain.KindObject, AssetID: 1, Price: 10}
		person := &Receipt{Kind: domain.KindPerson, AssetID: 1, Price: 20}
		require.NoError(t, store.CreateReceipt(ctx, object))
		require.NoError(t, store.CreateReceipt(ctx, person))
		assert.Equal(t, object.ID+1, person.ID)
	})

	t.Run("latest receipt wins for an asset", func(t *testing.T) {
		store := NewInMemoryStore()
		first := &Receipt{Kind: domain.KindObject, AssetID: 7, Price: 100}
		second := &Receipt{Kind: domain.KindObject, AssetID: 7, Price: 250}
		require.NoError(t, store.CreateReceipt(ctx, first))
		require.NoError(t, store.CreateReceipt(ctx, second))

		latest, err := store.LatestReceiptByAsset(ctx, domain.KindObject, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(250), latest.Price)
	})

	t.Run("delete then get", func(t *testing.T) {
		store := NewInMemoryStore()
		receipt := &Receipt{Kind: domain.KindObject, AssetID: 3, Price: 10}
		require.NoError(t, store.CreateReceipt(ctx, receipt))
		require.NoError(t, store.DeleteReceipt(ctx, domain.KindObject, receipt.ID))

		_, err := store.GetReceipt(ctx, domain.KindObject, receipt.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.ErrorIs(t, store.DeleteReceipt(ctx, domain.KindObject, receipt.ID), sentinel.ErrNotFound)
	})
}

func TestInMemoryStoreListingState(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	state, err := store.ListingState(ctx, domain.KindObject, 5)
	require.NoError(t, err)
	assert.Equal(t, StateNotListed, state)

	require.NoError(t, store.SetListingState(ctx, domain.KindObject, 5, StateListed))
	state, err = store.ListingState(ctx, domain.KindObject, 5)
	require.NoError(t, err)
	assert.Equal(t, StateListed, state)

	// the same asset id in the other registry is unaffected
	state, err = store.ListingState(ctx, domain.KindPerson, 5)
	require.NoError(t, err)
	assert.Equal(t, StateNotListed, state)

	require.NoError(t, store.SetListingState(ctx, domain.KindObject, 5, StateNotListed))
	state, err = store.ListingState(ctx, domain.KindObject, 5)
	require.NoError(t, err)
	assert.Equal(t, StateNotListed, state)
}
