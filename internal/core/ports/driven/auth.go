package driven

import "github.com/custodia-labs/docquery-core/internal/core/domain"

// AuthAdapter handles credential hashing and service token issuance.
type AuthAdapter interface {
	// HashSecret generates a hash from a plaintext secret
	HashSecret(secret string) (string, error)

	// VerifySecret checks if a secret matches a hash
	VerifySecret(secret, hash string) bool

	// GenerateToken creates a signed token from claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a token and extracts claims. Returns
	// domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
	ParseToken(token string) (*domain.TokenClaims, error)
}
