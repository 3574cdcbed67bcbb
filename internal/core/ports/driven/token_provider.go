package driven

import (
	"context"
)

// TokenProvider yields a currently valid access token for one user.
// Implementations refresh expired tokens before returning them.
type TokenProvider interface {
	// GetAccessToken returns a valid access token
	GetAccessToken(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to TokenProvider
type TokenProviderFunc func(ctx context.Context) (string, error)

// GetAccessToken calls f.
func (f TokenProviderFunc) GetAccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticTokenProvider returns a fixed access token. Used by tests and tools.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a token provider for a fixed token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// GetAccessToken returns the fixed token.
func (p *StaticTokenProvider) GetAccessToken(ctx context.Context) (string, error) {
	return p.token, nil
}
