package registry

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/audit"
	"lifeledger/internal/catalog"
	dErrors "lifeledger/pkg/domain-errors"
)

const hatchDelay = 24 * time.Hour

type serviceFixture struct {
	svc     *Service
	store   *InMemoryStore
	catalog *catalog.Service
	events  *audit.InMemoryStore
	escrow  *stubEscrow
}

// stubEscrow answers listing-state lookups from a plain map.
type stubEscrow struct {
	inEscrow map[uint64]bool
}

func (s *stubEscrow) ObjectInEscrow(_ context.Context, objectID uint64) (bool, error) {
	return s.inEscrow[objectID], nil
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	events := audit.NewInMemoryStore()
	store := NewInMemoryStore()
	catalogSvc := catalog.NewService(catalog.NewInMemoryStore())
	esc := &stubEscrow{inEscrow: map[uint64]bool{}}

	_, err := catalogSvc.Add(context.Background(), catalog.AddParams{
		Name:        "house",
		Price:       500,
		PriceBand:   "normal",
		ImageRef:    "images/house.png",
		Purchasable: true,
	})
	require.NoError(t, err)

	return &serviceFixture{
		svc:     NewService(store, catalogSvc, audit.NewPublisher(events), esc, hatchDelay, "images/incubating.png"),
		store:   store,
		catalog: catalogSvc,
		events:  events,
		escrow:  esc,
	}
}

func TestMintPersonDefaults(t *testing.T) {
	f := newFixture(t)
	before := time.Now()

	person, err := f.svc.MintPerson(context.Background(), 3, 4, "acct-1")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), person.ID)
	assert.Empty(t, person.Name)
	assert.Equal(t, uint64(3), person.FatherID)
	assert.Equal(t, uint64(4), person.MotherID)
	assert.Equal(t, DefaultGender, person.Gender)
	assert.Equal(t, DefaultOccupation, person.Occupation)
	assert.Equal(t, DefaultMoodStatus, person.MoodStatus)
	assert.Equal(t, DefaultHealthStatus, person.HealthStatus)
	assert.Equal(t, DefaultSchooling, person.Schooling)
	assert.Equal(t, "images/incubating.png", person.ImageRef)
	assert.WithinDuration(t, before.Add(hatchDelay), person.BirthDate, 5*time.Second)

	events, err := f.events.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionPersonMinted, events[0].Action)
	assert.Equal(t, person.ID, events[0].PersonID)
	require.NotNil(t, events[0].BirthDate)
}

func TestMintPersonIDsStrictlyIncrease(t *testing.T) {
	f := newFixture(t)

	var previous uint64
	for i := 0; i < 10; i++ {
		person, err := f.svc.MintPerson(context.Background(), 0, 0, "")
		require.NoError(t, err)
		assert.Equal(t, previous+1, person.ID)
		previous = person.ID
	}
}

func TestMintObjectCopiesCatalogImage(t *testing.T) {
	f := newFixture(t)

	object, err := f.svc.MintObject(context.Background(), "house", true, "acct-2")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), object.ID)
	assert.Equal(t, "images/house.png", object.ImageRef)
	assert.True(t, object.Mortgaged)
	assert.False(t, object.RentAllowed)
	assert.True(t, object.Vacant())
}

func TestMintObjectUnknownType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MintObject(context.Background(), "castle", false, "")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestMintObjectBatch(t *testing.T) {
	f := newFixture(t)

	objects, err := f.svc.MintObjectBatch(context.Background(), "house", 3, false, "")
	require.NoError(t, err)
	require.Len(t, objects, 3)
	for i, object := range objects {
		assert.Equal(t, uint64(i+1), object.ID)
	}

	events, err := f.events.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []uint64{1, 2, 3}, events[0].ObjectIDs)
}

func TestClaimNameOnce(t *testing.T) {
	f := newFixture(t)

	person, err := f.svc.MintPerson(context.Background(), 0, 0, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClaimName(context.Background(), person.ID, "Alice Smith"))

	loaded, err := f.svc.GetPerson(context.Background(), person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", loaded.Name)

	// Second claim always fails, whatever the name.
	err = f.svc.ClaimName(context.Background(), person.ID, "Bob")
	assert.True(t, dErrors.Is(err, dErrors.CodeConflict))
}

func TestClaimNameValidation(t *testing.T) {
	f := newFixture(t)

	person, err := f.svc.MintPerson(context.Background(), 0, 0, "")
	require.NoError(t, err)

	for _, bad := range []string{"", "   ", strings.Repeat("a", 300), "A!ice"} {
		err := f.svc.ClaimName(context.Background(), person.ID, bad)
		assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "name %q", bad)
	}

	// Still claimable after failed attempts.
	require.NoError(t, f.svc.ClaimName(context.Background(), person.ID, "  Alice Smith  "))
	loaded, err := f.svc.GetPerson(context.Background(), person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", loaded.Name)
}

func TestUpdatePersonFieldsIndependentOptionals(t *testing.T) {
	f := newFixture(t)

	person, err := f.svc.MintPerson(context.Background(), 0, 0, "")
	require.NoError(t, err)

	partner := uint64(9)
	err = f.svc.UpdatePersonFields(context.Background(), person.ID, PersonFieldUpdate{
		Fields:    map[string]string{"occupation": "farmer", "mood_status": "happy"},
		PartnerID: &partner,
	})
	require.NoError(t, err)

	loaded, err := f.svc.GetPerson(context.Background(), person.ID)
	require.NoError(t, err)
	assert.Equal(t, "farmer", loaded.Occupation)
	assert.Equal(t, "happy", loaded.MoodStatus)
	assert.Equal(t, uint64(9), loaded.PartnerID)
	// Absent components stay untouched.
	assert.Equal(t, DefaultHealthStatus, loaded.HealthStatus)
	assert.Equal(t, "images/incubating.png", loaded.ImageRef)
}

func TestUpdatePersonFieldsUnknownField(t *testing.T) {
	f := newFixture(t)

	person, err := f.svc.MintPerson(context.Background(), 0, 0, "")
	require.NoError(t, err)

	err = f.svc.UpdatePersonFields(context.Background(), person.ID, PersonFieldUpdate{
		Fields: map[string]string{"height": "180"},
	})
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestUpdateObjectFields(t *testing.T) {
	f := newFixture(t)

	object, err := f.svc.MintObject(context.Background(), "house", false, "")
	require.NoError(t, err)

	mortgaged := true
	require.NoError(t, f.svc.UpdateObjectFields(context.Background(), object.ID, &mortgaged, nil))

	loaded, err := f.svc.GetObject(context.Background(), object.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Mortgaged)
	assert.True(t, loaded.Vacant())

	occupant := uint64(5)
	require.NoError(t, f.svc.UpdateObjectFields(context.Background(), object.ID, nil, &occupant))

	loaded, err = f.svc.GetObject(context.Background(), object.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Mortgaged)
	assert.Equal(t, uint64(5), loaded.RentOccupantID)
}

func TestUpdateObjectFieldsRejectedWhileInEscrow(t *testing.T) {
	f := newFixture(t)

	object, err := f.svc.MintObject(context.Background(), "house", false, "")
	require.NoError(t, err)
	f.escrow.inEscrow[object.ID] = true

	mortgaged := true
	err = f.svc.UpdateObjectFields(context.Background(), object.ID, &mortgaged, nil)
	assert.True(t, dErrors.Is(err, dErrors.CodeInvalidState))

	loaded, err := f.svc.GetObject(context.Background(), object.ID)
	require.NoError(t, err)
	assert.False(t, loaded.Mortgaged)
}
