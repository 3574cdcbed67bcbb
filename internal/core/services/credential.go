package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.CredentialManager = (*CredentialManager)(nil)

// CredentialManager keeps drive credentials valid.
// Refreshes are serialized per user: in-process by a keyed mutex, and across
// instances by the distributed lock when one is configured.
type CredentialManager struct {
	store         driven.CredentialStore
	oauth         driven.OAuthProvider
	lock          driven.DistributedLock
	locks         *keyedMutex
	lockTTL       time.Duration
	retryInterval time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// CredentialManagerConfig holds dependencies for CredentialManager.
type CredentialManagerConfig struct {
	Store driven.CredentialStore
	OAuth driven.OAuthProvider

	// Lock is optional. Without it refreshes are only serialized within this process.
	Lock driven.DistributedLock

	// LockTTL bounds how long a crashed holder blocks other instances (default 30s)
	LockTTL time.Duration

	// RetryInterval is the wait between lock attempts (default 100ms)
	RetryInterval time.Duration

	Logger *slog.Logger
}

// NewCredentialManager creates a new credential manager.
func NewCredentialManager(cfg CredentialManagerConfig) *CredentialManager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := &CredentialManager{
		store:         cfg.Store,
		oauth:         cfg.OAuth,
		lock:          cfg.Lock,
		locks:         newKeyedMutex(),
		lockTTL:       cfg.LockTTL,
		retryInterval: cfg.RetryInterval,
		now:           time.Now,
		logger:        logger,
	}
	if m.lockTTL <= 0 {
		m.lockTTL = 30 * time.Second
	}
	if m.retryInterval <= 0 {
		m.retryInterval = 100 * time.Millisecond
	}
	return m
}

// GetValidCredential returns the user's credential, refreshing it if it is
// expired or about to expire.
func (m *CredentialManager) GetValidCredential(ctx context.Context, userID string) (*domain.Credential, error) {
	if userID == "" || strings.HasPrefix(userID, domain.TempKeyPrefix) {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrInvalidInput)
	}

	cred, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !cred.NeedsRefresh(m.now()) {
		return cred, nil
	}
	return m.refresh(ctx, userID)
}

// refresh exchanges the refresh token while holding the user's locks.
func (m *CredentialManager) refresh(ctx context.Context, userID string) (*domain.Credential, error) {
	unlock := m.locks.Lock(userID)
	defer unlock()

	if m.lock != nil {
		release, err := m.acquire(ctx, "credential-refresh:"+userID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	// Another caller may have refreshed while we waited
	cred, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	if !cred.NeedsRefresh(now) {
		return cred, nil
	}
	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token for %s", domain.ErrCredentialInvalid, userID)
	}

	token, err := m.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		m.logger.Warn("credential refresh failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: refresh for %s: %v", domain.ErrCredentialInvalid, userID, err)
	}

	updated := *cred
	updated.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		updated.RefreshToken = token.RefreshToken
	}
	updated.ExpiresAt = token.ExpiresAt
	updated.UpdatedAt = now

	if err := m.store.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save refreshed credential: %w", err)
	}

	m.logger.Info("credential refreshed", "user_id", userID, "expires_at", updated.ExpiresAt)
	return &updated, nil
}

// acquire retries the distributed lock until it is taken or ctx ends.
// Lock backend errors fall back to the in-process lock alone.
func (m *CredentialManager) acquire(ctx context.Context, name string) (func(), error) {
	for {
		acquired, err := m.lock.Acquire(ctx, name, m.lockTTL)
		if err != nil {
			m.logger.Warn("failed to acquire refresh lock", "lock", name, "error", err)
			return func() {}, nil
		}
		if acquired {
			return func() {
				if err := m.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					m.logger.Warn("failed to release refresh lock", "lock", name, "error", err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.retryInterval):
		}
	}
}

// Store saves freshly exchanged tokens under key.
func (m *CredentialManager) Store(ctx context.Context, key string, token *domain.OAuthToken) (*domain.Credential, error) {
	if key == "" || token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: key and access token are required", domain.ErrInvalidInput)
	}

	now := m.now()
	cred := &domain.Credential{
		Key:          key,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.store.Save(ctx, cred); err != nil {
		return nil, fmt.Errorf("save credential: %w", err)
	}
	return cred, nil
}

// Bind moves a credential from a temporary key to userID.
// The move is atomic: only one bind can succeed, and a failed bind leaves
// the temporary record in place.
func (m *CredentialManager) Bind(ctx context.Context, tempKey, userID string) (*domain.Credential, error) {
	if !strings.HasPrefix(tempKey, domain.TempKeyPrefix) {
		return nil, fmt.Errorf("%w: not a temporary key", domain.ErrInvalidInput)
	}
	if userID == "" || strings.HasPrefix(userID, domain.TempKeyPrefix) {
		return nil, fmt.Errorf("%w: invalid user id", domain.ErrInvalidInput)
	}

	unlock := m.locks.Lock(userID)
	defer unlock()

	bound, err := m.store.Move(ctx, tempKey, userID, m.now())
	if err != nil {
		return nil, fmt.Errorf("bind credential: %w", err)
	}

	m.logger.Info("credential bound", "user_id", userID)
	return bound, nil
}

// Exists reports whether userID has a bound credential.
func (m *CredentialManager) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := m.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TokenProvider returns a provider yielding valid access tokens for userID.
func (m *CredentialManager) TokenProvider(userID string) driven.TokenProvider {
	return driven.TokenProviderFunc(func(ctx context.Context) (string, error) {
		cred, err := m.GetValidCredential(ctx, userID)
		if err != nil {
			return "", err
		}
		return cred.AccessToken, nil
	})
}
