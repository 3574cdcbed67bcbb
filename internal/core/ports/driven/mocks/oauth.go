package mocks

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockOAuthProvider is a mock implementation of OAuthProvider for testing.
// Every refresh issues access token "access-<n>" valid for TokenLifetime.
type MockOAuthProvider struct {
	mu            sync.Mutex
	refreshCalls  int
	exchangeCalls int
	refreshErr    error
	exchangeErr   error

	// TokenLifetime is the validity of issued access tokens
	TokenLifetime time.Duration

	// RefreshDelay slows refreshes down to widen race windows in tests
	RefreshDelay time.Duration
}

// NewMockOAuthProvider creates a new MockOAuthProvider
func NewMockOAuthProvider() *MockOAuthProvider {
	return &MockOAuthProvider{TokenLifetime: time.Hour}
}

func (m *MockOAuthProvider) AuthCodeURL(state, codeVerifier string) string {
	v := url.Values{}
	v.Set("state", state)
	v.Set("code_challenge", codeVerifier)
	return "https://auth.example.com/authorize?" + v.Encode()
}

func (m *MockOAuthProvider) Exchange(ctx context.Context, code, codeVerifier string) (*domain.OAuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeCalls++
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	return &domain.OAuthToken{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresAt:    time.Now().Add(m.TokenLifetime),
	}, nil
}

func (m *MockOAuthProvider) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error) {
	if m.RefreshDelay > 0 {
		time.Sleep(m.RefreshDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshCalls++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &domain.OAuthToken{
		AccessToken: fmt.Sprintf("access-%d", m.refreshCalls),
		ExpiresAt:   time.Now().Add(m.TokenLifetime),
	}, nil
}

// Helper methods for testing

func (m *MockOAuthProvider) SetRefreshError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshErr = err
}

func (m *MockOAuthProvider) SetExchangeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeErr = err
}

func (m *MockOAuthProvider) RefreshCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshCalls
}

func (m *MockOAuthProvider) ExchangeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchangeCalls
}
