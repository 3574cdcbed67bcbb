package driven

import (
	"context"
	"time"
)

// OAuthState represents a pending drive authorization.
// Used for CSRF protection and PKCE code verifier storage.
type OAuthState struct {
	// State is a random string echoed back by the provider
	State string

	// CodeVerifier is the PKCE verifier sent during code exchange
	CodeVerifier string

	CreatedAt time.Time
	ExpiresAt time.Time
}

// OAuthStateStore keeps OAuth states. States are single-use and short-lived.
type OAuthStateStore interface {
	// Save stores a new OAuth state
	Save(ctx context.Context, state *OAuthState) error

	// GetAndDelete atomically retrieves and deletes the state.
	// Returns nil, nil if the state doesn't exist or has expired.
	GetAndDelete(ctx context.Context, state string) (*OAuthState, error)

	// Cleanup removes expired states
	Cleanup(ctx context.Context) error
}
