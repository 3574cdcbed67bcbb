package pgvec

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore implements driven.VectorStore on PostgreSQL with the vector extension
type VectorStore struct {
	db *sql.DB
}

// Open connects through the pgx stdlib driver and ensures the schema for
// the given embedding dimension exists.
func Open(ctx context.Context, url string, dimensions int) (*VectorStore, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: pgvector URL is required", domain.ErrInvalidInput)
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: pgvector needs a fixed embedding dimension", domain.ErrInvalidInput)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open pgvector db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping pgvector db: %v", domain.ErrVectorStoreUnavailable, err)
	}

	store := NewVectorStore(db)
	if err := store.EnsureSchema(ctx, dimensions); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewVectorStore wraps an existing connection
func NewVectorStore(db *sql.DB) *VectorStore {
	return &VectorStore{db: db}
}

// EnsureSchema creates the extension, tables and indexes when missing
func (s *VectorStore) EnsureSchema(ctx context.Context, dimensions int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vector_fragments (
			id          TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			ordinal     INTEGER NOT NULL,
			text        TEXT NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_vector_fragments_user ON vector_fragments (user_id, document_id)`,
		`CREATE TABLE IF NOT EXISTS vector_documents (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			title      TEXT NOT NULL,
			source     TEXT NOT NULL,
			workspace  TEXT NOT NULL,
			pages      INTEGER NOT NULL,
			processed  BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure pgvector schema: %v", domain.ErrVectorStoreUnavailable, err)
		}
	}
	return nil
}

// UpsertFragment inserts or replaces one fragment
func (s *VectorStore) UpsertFragment(ctx context.Context, f *domain.Fragment) error {
	const q = `
		INSERT INTO vector_fragments (id, document_id, user_id, ordinal, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			document_id = EXCLUDED.document_id,
			user_id = EXCLUDED.user_id,
			ordinal = EXCLUDED.ordinal,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding
	`
	_, err := s.db.ExecContext(ctx, q,
		f.ID, f.DocumentID, f.UserID, f.Ordinal, f.Text, pgvector.NewVector(f.Embedding))
	if err != nil {
		return fmt.Errorf("%w: upsert fragment %s: %v", domain.ErrVectorStoreUnavailable, f.ID, err)
	}
	return nil
}

// UpsertDocument inserts or replaces the document metadata row
func (s *VectorStore) UpsertDocument(ctx context.Context, doc *domain.DocumentRecord) error {
	const q = `
		INSERT INTO vector_documents (id, user_id, title, source, workspace, pages, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			pages = EXCLUDED.pages,
			processed = EXCLUDED.processed
	`
	_, err := s.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.FileName, string(doc.Source), doc.Workspace, doc.Pages, doc.Processed, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: upsert document %s: %v", domain.ErrVectorStoreUnavailable, doc.ID, err)
	}
	return nil
}

// searchQuery builds the similarity query for a filter. Certainty follows the
// Weaviate definition, (1 + cosine similarity) / 2.
func searchQuery(vector []float32, filter domain.SearchFilter, limit int) (string, []any) {
	args := []any{pgvector.NewVector(vector), filter.UserID}
	where := "user_id = $2"
	if filter.DocumentID != "" {
		args = append(args, filter.DocumentID)
		where += " AND document_id = $3"
	}
	args = append(args, limit)

	q := fmt.Sprintf(`
		SELECT id, document_id, user_id, ordinal, text, 1 - (embedding <=> $1) / 2 AS certainty
		FROM vector_fragments
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, where, len(args))
	return q, args
}

// Search returns the nearest fragments within the filter's tenant scope
func (s *VectorStore) Search(ctx context.Context, vector []float32, filter domain.SearchFilter, limit int) ([]*domain.ScoredFragment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultRetrievalLimit
	}

	q, args := searchQuery(vector, filter, limit)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer rows.Close()

	var out []*domain.ScoredFragment
	for rows.Next() {
		f := &domain.Fragment{}
		var certainty float64
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.UserID, &f.Ordinal, &f.Text, &certainty); err != nil {
			return nil, fmt.Errorf("%w: scan fragment: %v", domain.ErrVectorStoreUnavailable, err)
		}
		out = append(out, &domain.ScoredFragment{Fragment: f, Certainty: certainty})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: search rows: %v", domain.ErrVectorStoreUnavailable, err)
	}
	return out, nil
}

// HealthCheck pings the database
func (s *VectorStore) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	return nil
}

// Close closes the connection pool
func (s *VectorStore) Close() error {
	return s.db.Close()
}
