package driven

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// OAuthProvider talks to the drive provider's authorization server
type OAuthProvider interface {
	// AuthCodeURL builds the authorize redirect with offline access and a PKCE S256 challenge
	AuthCodeURL(state, codeVerifier string) string

	// Exchange trades an authorization code for tokens
	Exchange(ctx context.Context, code, codeVerifier string) (*domain.OAuthToken, error)

	// Refresh trades a refresh token for a new access token.
	// The returned RefreshToken is empty when the provider did not rotate it.
	Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error)
}
