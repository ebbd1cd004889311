// Package attestation issues and verifies capability claims: proofs that a
// caller controls a specific record in one of the registries, and role
// credentials for the owner/operator tiers. Verification re-derives the
// record id from the signed claim so mutating operations never trust
// caller-supplied ids.
package attestation

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"lifeledger/internal/domain"
	"lifeledger/internal/platform/middleware"
	dErrors "lifeledger/pkg/domain-errors"
)

// OwnershipClaims binds a registry kind and record id to a signed token. The
// generation snapshots the record's custody generation at issue time; the
// engine rejects claims minted before the record last changed hands.
type OwnershipClaims struct {
	Registry   string `json:"registry"`
	RecordID   uint64 `json:"record_id"`
	Generation uint64 `json:"gen"`
	jwt.RegisteredClaims
}

// RoleClaims carries an administrative tier.
type RoleClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies attestations with a shared HMAC key.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey string, issuer string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// IssueOwnership mints an ownership attestation for one record at the given
// custody generation.
func (s *Service) IssueOwnership(kind domain.RegistryKind, recordID uint64, generation uint64, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, OwnershipClaims{
		Registry:   string(kind),
		RecordID:   recordID,
		Generation: generation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// IssueRole mints an owner or operator credential.
func (s *Service) IssueRole(role middleware.Role, expiresIn time.Duration) (string, error) {
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, RoleClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return newToken.SignedString(s.signingKey)
}

// VerifyOwnership validates an attestation against the expected registry and
// returns the attested record id and the custody generation it was minted at.
func (s *Service) VerifyOwnership(tokenString string, expected domain.RegistryKind) (uint64, uint64, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OwnershipClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "attestation has expired")
		}
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation")
	}
	if !parsed.Valid {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation")
	}

	claims, ok := parsed.Claims.(*OwnershipClaims)
	if !ok {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation claims")
	}
	if claims.Registry != string(expected) {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "attestation for wrong registry")
	}
	if claims.RecordID == 0 {
		return 0, 0, dErrors.New(dErrors.CodeUnauthorized, "attestation without record id")
	}
	return claims.RecordID, claims.Generation, nil
}

// ValidateRole implements middleware.RoleValidator.
func (s *Service) ValidateRole(tokenString string) (middleware.Role, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &RoleClaims{}, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeUnauthorized, "credential has expired")
		}
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}
	if !parsed.Valid {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential")
	}

	claims, ok := parsed.Claims.(*RoleClaims)
	if !ok {
		return "", dErrors.New(dErrors.CodeUnauthorized, "invalid credential claims")
	}
	switch middleware.Role(claims.Role) {
	case middleware.RoleOwner, middleware.RoleOperator:
		return middleware.Role(claims.Role), nil
	default:
		return "", dErrors.New(dErrors.CodeUnauthorized, "unknown role")
	}
}

func (s *Service) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrTokenUnverifiable
	}
	return s.signingKey, nil
}
