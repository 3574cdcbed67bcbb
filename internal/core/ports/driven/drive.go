package driven

import (
	"context"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MimeTypePDF is the only content type synchronised from the drive
const MimeTypePDF = "application/pdf"

// DriveClient lists and downloads files from the user's cloud drive
type DriveClient interface {
	// ListFiles returns every non-trashed file with the given MIME type, following pagination
	ListFiles(ctx context.Context, tokens TokenProvider, mimeType string) ([]*domain.DriveFile, error)

	// Download returns the raw bytes of a file
	Download(ctx context.Context, tokens TokenProvider, fileID string) ([]byte, error)
}
