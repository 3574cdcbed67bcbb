package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DriveClient = (*DriveClient)(nil)

const (
	// DefaultPageSize is the listing page size
	DefaultPageSize = 100

	// DefaultMaxDownloadBytes caps a single file download (50MB)
	DefaultMaxDownloadBytes = 50 * 1024 * 1024

	listFields = "nextPageToken, files(id, name, mimeType, size)"
)

// DriveConfig configures the Drive client
type DriveConfig struct {
	// Endpoint overrides the Drive API base path when set (tests)
	Endpoint string

	PageSize         int64
	MaxDownloadBytes int64
	RateLimit        RateLimitConfig
}

// DriveClient implements driven.DriveClient on the Drive v3 API.
// A Drive service is built per call from the caller's token provider.
type DriveClient struct {
	endpoint    string
	pageSize    int64
	maxDownload int64
	limiter     *RateLimiter
}

// NewDriveClient creates a new Drive client
func NewDriveClient(cfg DriveConfig) *DriveClient {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxDownloadBytes <= 0 {
		cfg.MaxDownloadBytes = DefaultMaxDownloadBytes
	}
	return &DriveClient{
		endpoint:    cfg.Endpoint,
		pageSize:    cfg.PageSize,
		maxDownload: cfg.MaxDownloadBytes,
		limiter:     NewRateLimiter(cfg.RateLimit),
	}
}

func (c *DriveClient) service(ctx context.Context, tokens driven.TokenProvider) (*drive.Service, error) {
	opts := []option.ClientOption{option.WithTokenSource(NewTokenSource(ctx, tokens))}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: create drive service: %v", domain.ErrDriveUnavailable, err)
	}
	return svc, nil
}

// ListFiles returns every non-trashed file of mimeType, following pagination
func (c *DriveClient) ListFiles(ctx context.Context, tokens driven.TokenProvider, mimeType string) ([]*domain.DriveFile, error) {
	svc, err := c.service(ctx, tokens)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf("mimeType='%s' and trashed=false", strings.ReplaceAll(mimeType, "'", `\'`))

	var files []*domain.DriveFile
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := svc.Files.List().Q(q).PageSize(c.pageSize).Fields(listFields).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, c.mapError("list files", err)
		}

		for _, f := range resp.Files {
			files = append(files, &domain.DriveFile{
				ID:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
				Size:     f.Size,
			})
		}

		if resp.NextPageToken == "" {
			return files, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Download returns the raw bytes of a file, up to the configured limit
func (c *DriveClient) Download(ctx context.Context, tokens driven.TokenProvider, fileID string) ([]byte, error) {
	svc, err := c.service(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, c.mapError("download "+fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrDriveUnavailable, fileID, err)
	}
	if int64(len(data)) > c.maxDownload {
		return nil, fmt.Errorf("%w: file %s exceeds %d bytes", domain.ErrInvalidInput, fileID, c.maxDownload)
	}
	return data, nil
}

// mapError converts googleapi errors to domain errors and starts a backoff on 429
func (c *DriveClient) mapError(op string, err error) error {
	if errors.Is(err, domain.ErrCredentialInvalid) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %s: %s", domain.ErrCredentialInvalid, op, gerr.Message)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, op)
		case http.StatusTooManyRequests:
			c.limiter.Backoff(0)
		}
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDriveUnavailable, op, err)
}
