package driven

import (
	"context"
)

// TextExtractor converts a raw document payload into a single text blob.
type TextExtractor interface {
	// Extract returns the text of data. The mimeType selects the decoding.
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)

	// SupportedTypes returns MIME types this extractor handles.
	// Can include wildcards like "text/*" or specific types like "application/pdf".
	SupportedTypes() []string

	// Priority returns the extractor priority (higher = more specific).
	// Priority ranges:
	//   50-89:  Format-specific (PDF)
	//   10-49:  Generic (plain text)
	Priority() int
}

// ExtractorRegistry manages text extractors.
// When multiple extractors match a MIME type, the highest priority one is used.
type ExtractorRegistry interface {
	// Get retrieves the best-matching extractor for a MIME type.
	// Returns nil if no extractor is registered for the type.
	Get(mimeType string) TextExtractor

	// Register registers an extractor.
	Register(extractor TextExtractor)

	// ExtractFile resolves the MIME type from the file name's extension and extracts its text.
	// Unknown extensions fail with domain.ErrUnsupportedFormat.
	ExtractFile(ctx context.Context, fileName string, data []byte) (string, error)

	// List returns all registered MIME types.
	List() []string
}

// Chunker splits text into ordered, non-overlapping fragments.
type Chunker interface {
	// Chunk splits text into windows of at most maxWords words.
	// Empty text yields no fragments.
	Chunk(text string, maxWords int) []string
}
