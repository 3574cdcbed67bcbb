package driven

import "github.com/custodia-labs/vectormind/internal/core/domain"

// TokenVerifier validates bearer tokens issued by the identity provider.
// This does NOT issue tokens; sign-in lives outside this service.
type TokenVerifier interface {
	// ParseToken validates the token and returns its claims.
	// Returns domain.ErrUnauthorized for any invalid or expired token.
	ParseToken(token string) (*domain.TokenClaims, error)
}
