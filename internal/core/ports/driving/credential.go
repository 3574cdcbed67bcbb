package driving

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// CredentialManager owns the lifecycle of drive OAuth credentials
type CredentialManager interface {
	// GetValidCredential returns the user's credential, refreshing it first if expired.
	// Returns domain.ErrNotFound when the user never connected a drive and
	// domain.ErrCredentialInvalid when a refresh fails.
	GetValidCredential(ctx context.Context, userID string) (*domain.Credential, error)

	// Store saves freshly exchanged tokens under key
	Store(ctx context.Context, key string, token *domain.OAuthToken) (*domain.Credential, error)

	// Bind moves a credential from a temporary key to userID.
	// A second bind of the same key returns domain.ErrNotFound.
	Bind(ctx context.Context, tempKey, userID string) (*domain.Credential, error)

	// Exists reports whether userID has a bound credential
	Exists(ctx context.Context, userID string) (bool, error)

	// TokenProvider returns a provider yielding valid access tokens for userID
	TokenProvider(userID string) driven.TokenProvider
}
