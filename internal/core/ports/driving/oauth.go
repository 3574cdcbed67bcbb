package driving

import (
	"context"
	"time"
)

// DriveAuthService runs the drive authorization-code flow
type DriveAuthService interface {
	// Connect starts an authorization and returns the provider URL
	Connect(ctx context.Context) (*ConnectResponse, error)

	// Callback exchanges the code and parks the credential under a temporary key.
	// Unknown or expired states return domain.ErrInvalidInput.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// Claim binds a temporary credential to userID and starts a background sync
	Claim(ctx context.Context, tempKey, userID string) (*ClaimResponse, error)

	// Status reports whether userID has connected a drive
	Status(ctx context.Context, userID string) (*DriveStatus, error)
}

// ConnectResponse contains the authorization URL.
// @Description Response containing the drive authorization URL
type ConnectResponse struct {
	AuthorizationURL string    `json:"authorization_url" example:"https://accounts.google.com/o/oauth2/auth?client_id=..."`
	State            string    `json:"state" example:"abc123xyz"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// CallbackRequest represents the OAuth callback from the provider.
type CallbackRequest struct {
	Code  string
	State string

	// Error is set if the provider returned an error
	Error string
}

// CallbackResponse carries where to send the browser next
type CallbackResponse struct {
	TempKey     string
	RedirectURL string
}

// ClaimResponse confirms a bound credential.
// @Description Result of claiming a drive connection
type ClaimResponse struct {
	Connected   bool `json:"connected"`
	SyncStarted bool `json:"sync_started"`
}

// DriveStatus reports a user's drive connection.
// @Description Drive connection status
type DriveStatus struct {
	Connected bool `json:"connected"`
	Documents int  `json:"documents"`
}
