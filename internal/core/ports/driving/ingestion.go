package driving

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// IngestionService turns one document payload into indexed fragments
type IngestionService interface {
	// Ingest extracts, chunks, embeds and indexes a document, then records it.
	// Returns the stored DocumentRecord.
	Ingest(ctx context.Context, req IngestRequest) (*domain.DocumentRecord, error)
}

// IngestRequest describes one document to ingest
type IngestRequest struct {
	UserID   string
	FileName string
	Data     []byte
	Source   domain.SourceKind

	// Workspace defaults to domain.DefaultWorkspace
	Workspace string

	// DocumentID is generated when empty
	DocumentID string

	// ExternalID is the drive-native file id for drive documents
	ExternalID string

	// StorageKey is the blob key the raw bytes were stored under
	StorageKey string
}
