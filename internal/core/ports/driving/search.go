package driving

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// RetrievalService answers questions from a user's indexed documents
type RetrievalService interface {
	// Answer retrieves context for the query and generates an answer.
	// Falls back to a degraded answer when no context is available.
	// Returns domain.ErrInvalidQuery for blank queries and
	// domain.ErrGenerationUnavailable when the language model fails.
	Answer(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error)
}
