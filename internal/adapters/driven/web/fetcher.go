// Package web downloads externally hosted documents.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.URLFetcher = (*Fetcher)(nil)

// DefaultMaxBytes caps the size of a fetched document (25 MiB)
const DefaultMaxBytes = 25 << 20

// Fetcher implements driven.URLFetcher over net/http
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a fetcher with a request timeout and size limit.
// Zero values fall back to 60s and DefaultMaxBytes.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch downloads url and returns its body and content type
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", "vectormind/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: fetch %s: %v", domain.ErrUpstreamUnavailable, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, "", fmt.Errorf("%w: %s", domain.ErrNotFound, url)
	case resp.StatusCode >= 400:
		return nil, "", fmt.Errorf("%w: fetch %s: status %d", domain.ErrUpstreamUnavailable, url, resp.StatusCode)
	}

	if resp.ContentLength > f.maxBytes {
		return nil, "", fmt.Errorf("%w: document exceeds %d bytes", domain.ErrInvalidInput, f.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %v", domain.ErrUpstreamUnavailable, url, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("%w: document exceeds %d bytes", domain.ErrInvalidInput, f.maxBytes)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
