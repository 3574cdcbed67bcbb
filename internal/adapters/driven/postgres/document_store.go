package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, user_id, file_name, source, external_id, storage_key, size_bytes,
	workspace, words, pages, processed, created_at, last_accessed_at, access_count`

// Save creates or updates a document record
func (s *DocumentStore) Save(ctx context.Context, doc *domain.DocumentRecord) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			external_id = EXCLUDED.external_id,
			storage_key = EXCLUDED.storage_key,
			size_bytes = EXCLUDED.size_bytes,
			workspace = EXCLUDED.workspace,
			words = EXCLUDED.words,
			pages = EXCLUDED.pages,
			processed = EXCLUDED.processed
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		string(doc.Source),
		NullString(doc.ExternalID),
		NullString(doc.StorageKey),
		doc.SizeBytes,
		doc.Workspace,
		doc.Words,
		doc.Pages,
		doc.Processed,
		doc.CreatedAt,
		NullTime(doc.LastAccessedAt),
		doc.AccessCount,
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// GetForUser retrieves a document only when userID owns it
func (s *DocumentStore) GetForUser(ctx context.Context, id, userID string) (*domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND user_id = $2`
	return scanDocument(s.db.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns a user's documents, newest first
func (s *DocumentStore) ListByUser(ctx context.Context, userID string) ([]*domain.DocumentRecord, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.DocumentRecord, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountByUser returns how many documents a user owns
func (s *DocumentStore) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

// RecordAccess bumps the access counter in a single statement
func (s *DocumentStore) RecordAccess(ctx context.Context, id string, at time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET access_count = access_count + 1, last_accessed_at = $2 WHERE id = $1`,
		id, at)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete deletes a document record
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.DocumentRecord, error) {
	var (
		doc        domain.DocumentRecord
		source     string
		externalID sql.NullString
		storageKey sql.NullString
		lastAccess sql.NullTime
	)
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&source,
		&externalID,
		&storageKey,
		&doc.SizeBytes,
		&doc.Workspace,
		&doc.Words,
		&doc.Pages,
		&doc.Processed,
		&doc.CreatedAt,
		&lastAccess,
		&doc.AccessCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.Source = domain.SourceKind(source)
	doc.ExternalID = externalID.String
	doc.StorageKey = storageKey.String
	doc.LastAccessedAt = TimePtr(lastAccess)
	return &doc, nil
}
