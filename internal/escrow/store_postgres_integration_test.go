//go:build integration

package escrow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/domain"
	"lifeledger/internal/escrow"
	"lifeledger/pkg/platform/sentinel"
	"lifeledger/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := escrow.NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("receipt sequence is independent of asset ids", func(t *testing.T) {
		first := &escrow.Receipt{Kind: domain.KindObject, AssetID: 7, Price: 100, ImageRef: "images/house.png"}
		require.NoError(t, store.CreateReceipt(ctx, first))
		require.NotZero(t, first.ID)

		second := &escrow.Receipt{Kind: domain.KindPerson, AssetID: 7, Price: 40}
		require.NoError(t, store.CreateReceipt(ctx, second))
		assert.Equal(t, first.ID+1, second.ID)

		latest, err := store.LatestReceiptByAsset(ctx, domain.KindObject, 7)
		require.NoError(t, err)
		assert.Equal(t, first.ID, latest.ID)
		assert.Equal(t, int64(100), latest.Price)
	})

	t.Run("delete burns the receipt", func(t *testing.T) {
		receipt := &escrow.Receipt{Kind: domain.KindObject, AssetID: 3, Price: 10}
		require.NoError(t, store.CreateReceipt(ctx, receipt))
		require.NoError(t, store.DeleteReceipt(ctx, domain.KindObject, receipt.ID))

		_, err := store.GetReceipt(ctx, domain.KindObject, receipt.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("listing state defaults and transitions", func(t *testing.T) {
		state, err := store.ListingState(ctx, domain.KindObject, 42)
		require.NoError(t, err)
		assert.Equal(t, escrow.StateNotListed, state)

		require.NoError(t, store.SetListingState(ctx, domain.KindObject, 42, escrow.StateListed))
		require.NoError(t, store.SetListingState(ctx, domain.KindObject, 42, escrow.StateSold))

		state, err = store.ListingState(ctx, domain.KindObject, 42)
		require.NoError(t, err)
		assert.Equal(t, escrow.StateSold, state)

		require.NoError(t, store.SetListingState(ctx, domain.KindObject, 42, escrow.StateNotListed))
		state, err = store.ListingState(ctx, domain.KindObject, 42)
		require.NoError(t, err)
		assert.Equal(t, escrow.StateNotListed, state)
	})
}
