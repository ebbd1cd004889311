package attestation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeledger/internal/domain"
	"lifeledger/internal/platform/middleware"
	dErrors "lifeledger/pkg/domain-errors"
)

func newService() *Service {
	return NewService("test-signing-key", "lifeledger-test")
}

func TestOwnershipRoundTrip(t *testing.T) {
	svc := newService()

	token, err := svc.IssueOwnership(domain.KindObject, 42, 3, time.Minute)
	require.NoError(t, err)

	recordID, generation, err := svc.VerifyOwnership(token, domain.KindObject)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), recordID)
	assert.Equal(t, uint64(3), generation)
}

func TestOwnershipWrongRegistry(t *testing.T) {
	svc := newService()

	token, err := svc.IssueOwnership(domain.KindPerson, 7, 0, time.Minute)
	require.NoError(t, err)

	_, _, err = svc.VerifyOwnership(token, domain.KindObject)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestOwnershipExpired(t *testing.T) {
	svc := newService()

	token, err := svc.IssueOwnership(domain.KindPerson, 7, 0, -time.Minute)
	require.NoError(t, err)

	_, _, err = svc.VerifyOwnership(token, domain.KindPerson)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestOwnershipWrongKey(t *testing.T) {
	token, err := NewService("other-key", "lifeledger-test").IssueOwnership(domain.KindPerson, 7, 0, time.Minute)
	require.NoError(t, err)

	_, _, err = newService().VerifyOwnership(token, domain.KindPerson)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestRoleRoundTrip(t *testing.T) {
	svc := newService()

	token, err := svc.IssueRole(middleware.RoleOperator, time.Minute)
	require.NoError(t, err)

	role, err := svc.ValidateRole(token)
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleOperator, role)
}

func TestRoleRejectsOwnershipToken(t *testing.T) {
	svc := newService()

	token, err := svc.IssueOwnership(domain.KindPerson, 7, 0, time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateRole(token)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}
