package domain

import (
	"strings"
	"time"
)

// TempKeyPrefix marks a credential that has not been claimed by a user yet
const TempKeyPrefix = "temp_"

// RefreshWindow is how early before expiry a token is treated as stale
const RefreshWindow = time.Minute

// Credential is one user's drive OAuth grant.
// Key is the user ID once bound, or a temporary claim key before that.
type Credential struct {
	Key          string    `json:"key"`
	AccessToken  string    `json:"-"` // Never serialize
	RefreshToken string    `json:"-"` // Never serialize
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsTemporary reports whether the credential is still keyed by a claim key
func (c *Credential) IsTemporary() bool {
	return strings.HasPrefix(c.Key, TempKeyPrefix)
}

// IsExpired checks if the access token has expired at the given time.
// A zero expiry is treated as expired so it is refreshed before use.
func (c *Credential) IsExpired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(c.ExpiresAt)
}

// NeedsRefresh checks if the token expires within RefreshWindow
func (c *Credential) NeedsRefresh(now time.Time) bool {
	return c.IsExpired(now.Add(RefreshWindow))
}

// Rebind returns a copy of the credential keyed by userID
func (c *Credential) Rebind(userID string, now time.Time) *Credential {
	bound := *c
	bound.Key = userID
	bound.UpdatedAt = now
	return &bound
}

// OAuthToken is the token-endpoint response shape shared by code exchange and refresh
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
