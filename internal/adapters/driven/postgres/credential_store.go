package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*CredentialStore)(nil)

// tokenSecrets is the encrypted part of a credential row
type tokenSecrets struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialStore implements driven.CredentialStore with tokens encrypted at rest
type CredentialStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *DB, encryptor *SecretEncryptor) *CredentialStore {
	return &CredentialStore{db: db, encryptor: encryptor}
}

// Get retrieves the credential stored under key
func (s *CredentialStore) Get(ctx context.Context, key string) (*domain.Credential, error) {
	query := `
		SELECT key, secret_blob, expires_at, created_at, updated_at
		FROM drive_credentials
		WHERE key = $1
	`
	return s.scan(s.db.QueryRowContext(ctx, query, key))
}

// Save creates or replaces the credential under cred.Key
func (s *CredentialStore) Save(ctx context.Context, cred *domain.Credential) error {
	blob, err := s.encryptor.Encrypt(tokenSecrets{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt credential: %w", err)
	}

	now := time.Now().UTC()
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = now
	}
	if cred.UpdatedAt.IsZero() {
		cred.UpdatedAt = now
	}

	query := `
		INSERT INTO drive_credentials (key, secret_blob, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			secret_blob = EXCLUDED.secret_blob,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
	`
	expires := sql.NullTime{Time: cred.ExpiresAt, Valid: !cred.ExpiresAt.IsZero()}
	_, err = s.db.ExecContext(ctx, query, cred.Key, blob, expires, cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Move re-keys a row in a single statement. The DELETE ... RETURNING makes
// the claim single-use under concurrency, and a failed insert rolls the
// delete back with it.
func (s *CredentialStore) Move(ctx context.Context, fromKey, toKey string, updatedAt time.Time) (*domain.Credential, error) {
	query := `
		WITH taken AS (
			DELETE FROM drive_credentials
			WHERE key = $1
			RETURNING secret_blob, expires_at, created_at
		)
		INSERT INTO drive_credentials (key, secret_blob, expires_at, created_at, updated_at)
		SELECT $2, secret_blob, expires_at, created_at, $3 FROM taken
		ON CONFLICT (key) DO UPDATE SET
			secret_blob = EXCLUDED.secret_blob,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at
		RETURNING key, secret_blob, expires_at, created_at, updated_at
	`
	return s.scan(s.db.QueryRowContext(ctx, query, fromKey, toKey, updatedAt.UTC()))
}

// Delete removes the credential under key
func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM drive_credentials WHERE key = $1`, key)
	return err
}

func (s *CredentialStore) scan(row *sql.Row) (*domain.Credential, error) {
	var (
		cred    domain.Credential
		blob    []byte
		expires sql.NullTime
	)
	err := row.Scan(&cred.Key, &blob, &expires, &cred.CreatedAt, &cred.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var secrets tokenSecrets
	if err := s.encryptor.Decrypt(blob, &secrets); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialInvalid, err)
	}
	cred.AccessToken = secrets.AccessToken
	cred.RefreshToken = secrets.RefreshToken
	if expires.Valid {
		cred.ExpiresAt = expires.Time
	}
	return &cred, nil
}
