//go:build integration

package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/registry"
	"lifeledger/pkg/platform/sentinel"
	"lifeledger/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := registry.NewPostgresStore(pg.DB)
	ctx := context.Background()

	t.Run("person ids are monotonic and fields round-trip", func(t *testing.T) {
		first := &registry.Person{
			BirthDate:    time.Now().Add(time.Hour).UTC(),
			Gender:       registry.DefaultGender,
			Occupation:   registry.DefaultOccupation,
			MoodStatus:   registry.DefaultMoodStatus,
			HealthStatus: registry.DefaultHealthStatus,
			Schooling:    registry.DefaultSchooling,
			ImageRef:     "images/incubating.png",
		}
		require.NoError(t, store.CreatePerson(ctx, first))
		require.NotZero(t, first.ID)

		second := &registry.Person{
			BirthDate:    time.Now().UTC(),
			Gender:       registry.DefaultGender,
			Occupation:   registry.DefaultOccupation,
			MoodStatus:   registry.DefaultMoodStatus,
			HealthStatus: registry.DefaultHealthStatus,
			Schooling:    registry.DefaultSchooling,
		}
		require.NoError(t, store.CreatePerson(ctx, second))
		assert.Equal(t, first.ID+1, second.ID)

		loaded, err := store.GetPerson(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "images/incubating.png", loaded.ImageRef)
		assert.Equal(t, registry.DefaultGender, loaded.Gender)
	})

	t.Run("put updates an existing person", func(t *testing.T) {
		person := &registry.Person{
			BirthDate:    time.Now().UTC(),
			Gender:       registry.DefaultGender,
			Occupation:   registry.DefaultOccupation,
			MoodStatus:   registry.DefaultMoodStatus,
			HealthStatus: registry.DefaultHealthStatus,
			Schooling:    registry.DefaultSchooling,
		}
		require.NoError(t, store.CreatePerson(ctx, person))

		person.Name = "Alice Smith"
		person.Occupation = "lawyer"
		person.CustodyGeneration = 1
		require.NoError(t, store.PutPerson(ctx, person))

		loaded, err := store.GetPerson(ctx, person.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", loaded.Name)
		assert.Equal(t, "lawyer", loaded.Occupation)
		assert.Equal(t, uint64(1), loaded.CustodyGeneration)
	})

	t.Run("object lifecycle fields persist", func(t *testing.T) {
		object := &registry.Object{TypeName: "house", ImageRef: "images/house.png"}
		require.NoError(t, store.CreateObject(ctx, object))

		object.Mortgaged = true
		object.RentAllowed = true
		object.DailyRentPrice = 25
		object.RentOccupantID = 9
		object.CustodyGeneration = 2
		require.NoError(t, store.PutObject(ctx, object))

		loaded, err := store.GetObject(ctx, object.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Mortgaged)
		assert.True(t, loaded.RentAllowed)
		assert.Equal(t, int64(25), loaded.DailyRentPrice)
		assert.Equal(t, uint64(9), loaded.RentOccupantID)
		assert.Equal(t, uint64(2), loaded.CustodyGeneration)
	})

	t.Run("missing records", func(t *testing.T) {
		_, err := store.GetPerson(ctx, 999999)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		err = store.PutObject(ctx, &registry.Object{ID: 999999, TypeName: "house"})
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
