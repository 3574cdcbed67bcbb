package driving

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// DocumentService handles user-facing document operations
type DocumentService interface {
	// Upload stores the raw bytes and ingests them as an uploaded document
	Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error)

	// IngestExternal fetches a document from a URL and ingests it
	IngestExternal(ctx context.Context, req ExternalRequest) (*UploadResponse, error)

	// List returns a user's documents, newest first
	List(ctx context.Context, userID string) ([]*domain.DocumentRecord, error)

	// Content returns the raw bytes of a document through the cache
	Content(ctx context.Context, userID, docID string) ([]byte, *domain.DocumentRecord, error)
}

// UploadRequest is a file uploaded by a user
type UploadRequest struct {
	UserID    string
	FileName  string
	Data      []byte
	Workspace string
}

// ExternalRequest asks to ingest a publicly reachable document.
// @Description Request to ingest a document from a URL
type ExternalRequest struct {
	UserID    string `json:"-"`
	URL       string `json:"url" example:"https://example.com/report.pdf"`
	Name      string `json:"name,omitempty" example:"report.pdf"`
	Workspace string `json:"workspace,omitempty" example:"default"`
}

// UploadResponse summarises an ingested document.
// @Description Result of an upload or external ingestion
type UploadResponse struct {
	DocumentID string `json:"docId" example:"3f2b8c1e-2b7a-4c55-9d1e-8f7a6b5c4d3e"`
	Name       string `json:"name" example:"report.pdf"`
	Words      int    `json:"words" example:"1000"`
	Chunks     int    `json:"chunks" example:"3"`
}

// DocumentCache serves raw document bytes from a bounded, expiring cache
type DocumentCache interface {
	// Get returns the bytes of a document owned by userID.
	// Returns domain.ErrNotFound when no record or byte source exists.
	Get(ctx context.Context, userID, docID string) ([]byte, error)

	// Evict removes a cached entry
	Evict(userID, docID string)

	// Stats reports cache counters
	Stats() CacheStats
}

// CacheStats reports document cache counters.
// @Description Document cache counters
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}
