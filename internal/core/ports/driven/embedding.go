package driven

import (
	"context"
)

// EmbeddingService maps text to fixed-length vectors.
// A single configured implementation serves both ingestion and retrieval
// so stored and query vectors always share one embedding space.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts in one call.
	// Result positions correspond 1:1 to input positions.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size, 0 if unknown until first call
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
