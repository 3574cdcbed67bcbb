package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// DefaultStateTTL is how long a pending drive authorization stays valid
const DefaultStateTTL = 10 * time.Minute

// Verify interface compliance
var _ driving.DriveAuthService = (*driveAuthService)(nil)

// driveAuthService runs the drive authorization-code flow with PKCE.
// The callback arrives without a user session, so tokens are parked under a
// temporary key until the signed-in user claims them.
type driveAuthService struct {
	oauth       driven.OAuthProvider
	states      driven.OAuthStateStore
	credentials driving.CredentialManager
	sync        driving.DriveSyncService
	documents   driven.DocumentStore
	frontendURL string
	stateTTL    time.Duration
	logger      *slog.Logger
}

// DriveAuthConfig holds dependencies for the drive auth service.
type DriveAuthConfig struct {
	OAuth       driven.OAuthProvider
	States      driven.OAuthStateStore
	Credentials driving.CredentialManager
	Sync        driving.DriveSyncService

	// Documents is optional; when set, Status reports the user's document count
	Documents driven.DocumentStore

	// FrontendURL is where the browser lands after the callback.
	// Example: "http://localhost:3000"
	FrontendURL string

	StateTTL time.Duration
	Logger   *slog.Logger
}

// NewDriveAuthService creates a new drive auth service.
func NewDriveAuthService(cfg DriveAuthConfig) driving.DriveAuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &driveAuthService{
		oauth:       cfg.OAuth,
		states:      cfg.States,
		credentials: cfg.Credentials,
		sync:        cfg.Sync,
		documents:   cfg.Documents,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		stateTTL:    ttl,
		logger:      logger,
	}
}

// Connect generates state and a PKCE verifier and returns the authorization URL.
func (s *driveAuthService) Connect(ctx context.Context) (*driving.ConnectResponse, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	verifier, err := generateRandomString(64)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(s.stateTTL)
	if err := s.states.Save(ctx, &driven.OAuthState{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("save oauth state: %w", err)
	}

	return &driving.ConnectResponse{
		AuthorizationURL: s.oauth.AuthCodeURL(state, verifier),
		State:            state,
		ExpiresAt:        expiresAt,
	}, nil
}

// Callback validates the single-use state, exchanges the code and parks the
// credential under a temporary key.
func (s *driveAuthService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if req.Error != "" {
		return nil, fmt.Errorf("%w: provider returned %s", domain.ErrUnauthorized, req.Error)
	}
	if req.State == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: state and code are required", domain.ErrInvalidInput)
	}

	oauthState, err := s.states.GetAndDelete(ctx, req.State)
	if err != nil {
		return nil, fmt.Errorf("get oauth state: %w", err)
	}
	if oauthState == nil {
		return nil, fmt.Errorf("%w: state is invalid or expired", domain.ErrInvalidInput)
	}

	token, err := s.oauth.Exchange(ctx, req.Code, oauthState.CodeVerifier)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrCredentialInvalid) {
			return nil, fmt.Errorf("code exchange: %w", err)
		}
		return nil, fmt.Errorf("%w: code exchange: %v", domain.ErrCredentialInvalid, err)
	}

	tempKey := domain.TempKeyPrefix + newID()
	if _, err := s.credentials.Store(ctx, tempKey, token); err != nil {
		return nil, err
	}

	return &driving.CallbackResponse{
		TempKey:     tempKey,
		RedirectURL: s.redirectURL(tempKey),
	}, nil
}

func (s *driveAuthService) redirectURL(tempKey string) string {
	v := url.Values{}
	v.Set("drive", "connected")
	v.Set("temp", tempKey)
	return s.frontendURL + "/dashboard?" + v.Encode()
}

// Claim binds the temporary credential to userID and starts a sync.
func (s *driveAuthService) Claim(ctx context.Context, tempKey, userID string) (*driving.ClaimResponse, error) {
	if _, err := s.credentials.Bind(ctx, tempKey, userID); err != nil {
		return nil, err
	}

	resp := &driving.ClaimResponse{Connected: true}
	if s.sync != nil {
		s.sync.SyncAll(ctx, userID)
		resp.SyncStarted = true
	}
	s.logger.Info("drive connected", "user_id", userID, "sync_started", resp.SyncStarted)
	return resp, nil
}

// Status reports whether userID has connected a drive.
func (s *driveAuthService) Status(ctx context.Context, userID string) (*driving.DriveStatus, error) {
	ok, err := s.credentials.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	status := &driving.DriveStatus{Connected: ok}
	if s.documents != nil {
		n, err := s.documents.CountByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("count documents: %w", err)
		}
		status.Documents = n
	}
	return status, nil
}
