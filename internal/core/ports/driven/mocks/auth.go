package mocks

import (
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockTokenVerifier accepts tokens of the form "token-<userID>"
type MockTokenVerifier struct{}

// NewMockTokenVerifier creates a new MockTokenVerifier
func NewMockTokenVerifier() *MockTokenVerifier {
	return &MockTokenVerifier{}
}

func (m *MockTokenVerifier) ParseToken(token string) (*domain.TokenClaims, error) {
	userID, ok := strings.CutPrefix(token, "token-")
	if !ok || userID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := time.Now()
	return &domain.TokenClaims{
		Subject:   userID,
		Email:     userID + "@example.com",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}, nil
}
