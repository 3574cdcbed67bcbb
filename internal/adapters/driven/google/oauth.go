package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.OAuthProvider = (*OAuthClient)(nil)

// OAuthConfig configures the Google authorization-code flow
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides Google's endpoints when set
	Endpoint *oauth2.Endpoint

	// Timeout bounds token endpoint calls
	Timeout time.Duration
}

// OAuthClient implements driven.OAuthProvider with golang.org/x/oauth2
type OAuthClient struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuthClient creates a client requesting read-only Drive access
func NewOAuthClient(cfg OAuthConfig) (*OAuthClient, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: google client id and secret are required", domain.ErrInvalidInput)
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("%w: google redirect url is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	endpoint := googleoauth.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{drive.DriveReadonlyScope},
		},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// AuthCodeURL builds the consent URL with offline access and a PKCE S256 challenge
func (c *OAuthClient) AuthCodeURL(state, codeVerifier string) string {
	return c.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(codeVerifier),
	)
}

// Exchange trades an authorization code for tokens
func (c *OAuthClient) Exchange(ctx context.Context, code, codeVerifier string) (*domain.OAuthToken, error) {
	tok, err := c.config.Exchange(c.withClient(ctx), code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, mapTokenError("exchange code", err)
	}
	return toDomainToken(tok), nil
}

// Refresh trades a refresh token for a new access token
func (c *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*domain.OAuthToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token", domain.ErrCredentialInvalid)
	}

	ts := c.config.TokenSource(c.withClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := ts.Token()
	if err != nil {
		return nil, mapTokenError("refresh token", err)
	}

	out := toDomainToken(tok)
	// the token source copies the old refresh token forward when none is returned
	if out.RefreshToken == refreshToken {
		out.RefreshToken = ""
	}
	return out, nil
}

func (c *OAuthClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

func toDomainToken(tok *oauth2.Token) *domain.OAuthToken {
	return &domain.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
}

// mapTokenError treats a rejection by the token endpoint as an invalid
// credential and anything else as an unavailable upstream.
func mapTokenError(op string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil && rerr.Response.StatusCode < 500 {
		return fmt.Errorf("%w: %s: %s", domain.ErrCredentialInvalid, op, rerr.ErrorCode)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDriveUnavailable, op, err)
}
