package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// DocumentStore handles DocumentRecord persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document record
	Save(ctx context.Context, doc *domain.DocumentRecord) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.DocumentRecord, error)

	// GetForUser retrieves a document by ID only if it belongs to userID.
	// Returns domain.ErrNotFound otherwise.
	GetForUser(ctx context.Context, id, userID string) (*domain.DocumentRecord, error)

	// ListByUser returns a user's documents, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.DocumentRecord, error)

	// CountByUser returns how many documents a user owns
	CountByUser(ctx context.Context, userID string) (int, error)

	// RecordAccess atomically bumps access_count and sets last_accessed_at
	RecordAccess(ctx context.Context, id string, at time.Time) error

	// Delete deletes a document record
	Delete(ctx context.Context, id string) error
}
