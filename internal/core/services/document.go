package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// DefaultMaxDocumentBytes caps uploaded and fetched documents
const DefaultMaxDocumentBytes = 25 << 20

// Verify interface compliance
var _ driving.DocumentService = (*documentService)(nil)

// documentService stores raw bytes, hands them to ingestion and serves them back.
type documentService struct {
	ingestion driving.IngestionService
	documents driven.DocumentStore
	blobs     driven.BlobStore
	fetcher   driven.URLFetcher
	cache     driving.DocumentCache
	maxBytes  int64
	logger    *slog.Logger
}

// DocumentServiceConfig holds dependencies for the document service.
type DocumentServiceConfig struct {
	Ingestion driving.IngestionService
	Documents driven.DocumentStore
	Blobs     driven.BlobStore
	Fetcher   driven.URLFetcher
	Cache     driving.DocumentCache

	// MaxBytes caps a single document (default 25 MiB)
	MaxBytes int64

	Logger *slog.Logger
}

// NewDocumentService creates a new document service.
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDocumentBytes
	}
	return &documentService{
		ingestion: cfg.Ingestion,
		documents: cfg.Documents,
		blobs:     cfg.Blobs,
		fetcher:   cfg.Fetcher,
		cache:     cfg.Cache,
		maxBytes:  maxBytes,
		logger:    logger,
	}
}

// BlobKey is where the raw bytes of a document are stored
func BlobKey(userID, docID, fileName string) string {
	return "users/" + userID + "/documents/" + docID + "/" + fileName
}

// Upload stores the bytes, then ingests them with source=upload.
func (s *documentService) Upload(ctx context.Context, req driving.UploadRequest) (*driving.UploadResponse, error) {
	return s.store(ctx, req.UserID, req.FileName, req.Data, req.Workspace, domain.SourceUpload)
}

// IngestExternal fetches a URL, then ingests it with source=external.
func (s *documentService) IngestExternal(ctx context.Context, req driving.ExternalRequest) (*driving.UploadResponse, error) {
	raw := strings.TrimSpace(req.URL)
	if raw == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: url must be absolute http(s)", domain.ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = path.Base(u.Path)
	}

	data, _, err := s.fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	return s.store(ctx, req.UserID, name, data, req.Workspace, domain.SourceExternal)
}

func (s *documentService) store(ctx context.Context, userID, fileName string, data []byte, workspace string, source domain.SourceKind) (*driving.UploadResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}

	docID := newID()
	key := BlobKey(userID, docID, fileName)
	if err := s.blobs.Put(ctx, key, data, http.DetectContentType(data)); err != nil {
		return nil, fmt.Errorf("store %s: %w", fileName, err)
	}

	doc, err := s.ingestion.Ingest(ctx, driving.IngestRequest{
		UserID:     userID,
		DocumentID: docID,
		FileName:   fileName,
		Data:       data,
		Source:     source,
		StorageKey: key,
		Workspace:  workspace,
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("failed to remove blob of rejected document", "doc_id", docID, "error", delErr)
		}
		return nil, err
	}

	return &driving.UploadResponse{
		DocumentID: doc.ID,
		Name:       doc.FileName,
		Words:      doc.Words,
		Chunks:     doc.Pages,
	}, nil
}

// List returns a user's documents, newest first.
func (s *documentService) List(ctx context.Context, userID string) ([]*domain.DocumentRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return s.documents.ListByUser(ctx, userID)
}

// Content returns a document's bytes through the cache along with its record.
func (s *documentService) Content(ctx context.Context, userID, docID string) ([]byte, *domain.DocumentRecord, error) {
	data, err := s.cache.Get(ctx, userID, docID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.documents.GetForUser(ctx, docID, userID)
	if err != nil {
		return nil, nil, err
	}
	return data, doc, nil
}

// sanitizeFileName keeps the last path element only
func sanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
