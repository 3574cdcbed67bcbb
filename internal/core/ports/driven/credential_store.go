package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// CredentialStore persists drive credentials keyed by user ID or temporary claim key.
// Token fields are encrypted at rest by the PostgreSQL implementation.
type CredentialStore interface {
	// Get retrieves the credential stored under key.
	// Returns domain.ErrNotFound if none exists.
	Get(ctx context.Context, key string) (*domain.Credential, error)

	// Save creates or replaces the credential stored under cred.Key
	Save(ctx context.Context, cred *domain.Credential) error

	// Move atomically re-keys the credential under fromKey to toKey, replacing
	// any credential already under toKey. Exactly one concurrent caller succeeds;
	// the others get domain.ErrNotFound. On error nothing is changed.
	Move(ctx context.Context, fromKey, toKey string, updatedAt time.Time) (*domain.Credential, error)

	// Delete removes the credential under key
	Delete(ctx context.Context, key string) error
}
