package driven

import "context"

// BlobStore keeps the raw bytes of uploaded and externally fetched documents
type BlobStore interface {
	// Put writes data under key, replacing any previous value
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the bytes under key. Returns domain.ErrNotFound if missing.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// URLFetcher downloads a document from a public URL
type URLFetcher interface {
	// Fetch returns the body and its reported content type
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}
