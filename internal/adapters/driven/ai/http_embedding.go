package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Ensure HTTPEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*HTTPEmbedding)(nil)

// DefaultEmbeddingModel is the sentence-transformer model served by the embedder
const DefaultEmbeddingModel = "all-MiniLM-L6-v2"

// HTTPEmbedding implements EmbeddingService against a self-hosted embedder
// exposing POST /embed {"texts": [...]} -> {"embeddings": [[...]]}.
type HTTPEmbedding struct {
	baseURL string
	model   string
	client  *http.Client

	mu         sync.RWMutex
	dimensions int
}

// NewHTTPEmbedding creates a new embedding client.
// dimensions may be 0, in which case it is learned from the first response.
func NewHTTPEmbedding(baseURL string, dimensions int, timeout time.Duration) (*HTTPEmbedding, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: embedding URL is required", domain.ErrInvalidInput)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &HTTPEmbedding{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      DefaultEmbeddingModel,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// embedRequest is the request body for the embed endpoint
type embedRequest struct {
	Texts []string `json:"texts"`
}

// embedResponse is the response from the embed endpoint
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// Embed generates embeddings for multiple texts
func (e *HTTPEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.doRequest(ctx, embedRequest{Texts: texts})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrEmbeddingUnavailable, len(texts), len(resp.Embeddings))
	}

	dim := e.Dimensions()
	for i, v := range resp.Embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at position %d", domain.ErrEmbeddingUnavailable, i)
		}
		if dim == 0 {
			dim = len(v)
		}
		if len(v) != dim {
			return nil, fmt.Errorf("%w: embedding %d has %d dimensions, expected %d",
				domain.ErrEmbeddingUnavailable, i, len(v), dim)
		}
	}
	e.learnDimensions(dim)

	return resp.Embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *HTTPEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the embedding dimension size
func (e *HTTPEmbedding) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimensions
}

func (e *HTTPEmbedding) learnDimensions(dim int) {
	e.mu.Lock()
	if e.dimensions == 0 {
		e.dimensions = dim
	}
	e.mu.Unlock()
}

// Model returns the model name being used
func (e *HTTPEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *HTTPEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *HTTPEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *HTTPEmbedding) doRequest(ctx context.Context, reqBody embedRequest) (*embedResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrEmbeddingUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embedder returned status %d", domain.ErrEmbeddingUnavailable, resp.StatusCode)
	}

	var embResp embedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if embResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, embResp.Error)
	}

	return &embResp, nil
}
