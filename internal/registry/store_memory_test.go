package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lifeledger/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestPersonIDsAreSequential() {
	for want := uint64(1); want <= 5; want++ {
		person := &Person{Gender: DefaultGender}
		require.NoError(s.T(), s.store.CreatePerson(context.Background(), person))
		assert.Equal(s.T(), want, person.ID)
	}
}

func (s *InMemoryStoreSuite) TestPersonAndObjectSequencesAreIndependent() {
	require.NoError(s.T(), s.store.CreatePerson(context.Background(), &Person{}))
	require.NoError(s.T(), s.store.CreatePerson(context.Background(), &Person{}))

	object := &Object{TypeName: "house"}
	require.NoError(s.T(), s.store.CreateObject(context.Background(), object))
	assert.Equal(s.T(), uint64(1), object.ID)
}

func (s *InMemoryStoreSuite) TestGetReturnsCopy() {
	person := &Person{Gender: DefaultGender}
	require.NoError(s.T(), s.store.CreatePerson(context.Background(), person))

	loaded, err := s.store.GetPerson(context.Background(), person.ID)
	require.NoError(s.T(), err)
	loaded.Gender = "female"

	again, err := s.store.GetPerson(context.Background(), person.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), DefaultGender, again.Gender)
}

func (s *InMemoryStoreSuite) TestPutPerson() {
	person := &Person{}
	require.NoError(s.T(), s.store.CreatePerson(context.Background(), person))

	person.Name = "Alice Smith"
	require.NoError(s.T(), s.store.PutPerson(context.Background(), person))

	loaded, err := s.store.GetPerson(context.Background(), person.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Alice Smith", loaded.Name)
}

func (s *InMemoryStoreSuite) TestNotFound() {
	_, err := s.store.GetPerson(context.Background(), 99)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	_, err = s.store.GetObject(context.Background(), 99)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)

	err = s.store.PutObject(context.Background(), &Object{ID: 99})
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}
