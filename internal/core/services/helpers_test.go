package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/vectormind/internal/postprocessors"
)

// testWords returns n distinct words separated by single spaces
func testWords(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("word%d", i+1)
	}
	return strings.Join(parts, " ")
}

type ingestionFixture struct {
	pipeline  *IngestionPipeline
	embedder  *mocks.MockEmbeddingService
	vectors   *mocks.MockVectorStore
	documents *mocks.MockDocumentStore
	registry  *mocks.MockExtractorRegistry
}

// Test helper to create IngestionPipeline with mocks
func newIngestionFixture(t *testing.T) *ingestionFixture {
	t.Helper()

	f := &ingestionFixture{
		embedder:  mocks.NewMockEmbeddingService(),
		vectors:   mocks.NewMockVectorStore(),
		documents: mocks.NewMockDocumentStore(),
		registry:  mocks.NewMockExtractorRegistry(),
	}
	f.pipeline = NewIngestionPipeline(IngestionConfig{
		Extractors:    f.registry,
		Chunker:       postprocessors.NewWordChunker(domain.DefaultWindowWords),
		Embedder:      f.embedder,
		VectorStore:   f.vectors,
		DocumentStore: f.documents,
	})
	return f
}
