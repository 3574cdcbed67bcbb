package driven

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// VectorStore indexes fragments and runs filtered nearest-neighbour queries.
// Implementations must apply every field of the filter; the user scope is
// the only tenant isolation at query time.
type VectorStore interface {
	// UpsertFragment writes one fragment with its vector.
	// Writing the same fragment ID twice overwrites it.
	UpsertFragment(ctx context.Context, fragment *domain.Fragment) error

	// UpsertDocument writes the document-level metadata object
	UpsertDocument(ctx context.Context, doc *domain.DocumentRecord) error

	// Search returns at most limit fragments ordered by descending certainty
	Search(ctx context.Context, vector []float32, filter domain.SearchFilter, limit int) ([]*domain.ScoredFragment, error)

	// HealthCheck verifies the vector store is available
	HealthCheck(ctx context.Context) error
}
