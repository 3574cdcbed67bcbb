package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// Class names used in the Weaviate schema
const (
	FragmentClass = "Fragment"
	DocumentClass = "Document"
)

// VectorStore implements driven.VectorStore using Weaviate's REST and GraphQL APIs
type VectorStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Config holds Weaviate connection configuration
type Config struct {
	// BaseURL is the Weaviate endpoint (e.g., http://localhost:8080)
	BaseURL string

	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewVectorStore creates a new Weaviate-backed VectorStore
func NewVectorStore(cfg Config) *VectorStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &VectorStore{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// weaviateObject is the body of the objects API
type weaviateObject struct {
	Class      string         `json:"class"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Vector     []float32      `json:"vector,omitempty"`
}

// UpsertFragment writes one fragment with its embedding
func (s *VectorStore) UpsertFragment(ctx context.Context, f *domain.Fragment) error {
	obj := weaviateObject{
		Class: FragmentClass,
		ID:    f.ID,
		Properties: map[string]any{
			"docId":  f.DocumentID,
			"userId": f.UserID,
			"page":   f.Ordinal,
			"text":   f.Text,
		},
		Vector: f.Embedding,
	}
	return s.upsert(ctx, obj)
}

// UpsertDocument writes the document metadata object, without a vector
func (s *VectorStore) UpsertDocument(ctx context.Context, doc *domain.DocumentRecord) error {
	obj := weaviateObject{
		Class: DocumentClass,
		ID:    doc.ID,
		Properties: map[string]any{
			"docId":      doc.ID,
			"userId":     doc.UserID,
			"title":      doc.FileName,
			"source":     string(doc.Source),
			"externalId": doc.ExternalID,
			"workspace":  doc.Workspace,
			"pages":      doc.Pages,
			"processed":  doc.Processed,
			"createdAt":  doc.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	return s.upsert(ctx, obj)
}

// upsert replaces the object when it exists and creates it otherwise
func (s *VectorStore) upsert(ctx context.Context, obj weaviateObject) error {
	status, body, err := s.do(ctx, http.MethodPut, fmt.Sprintf("/v1/objects/%s/%s", obj.Class, obj.ID), obj)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		status, body, err = s.do(ctx, http.MethodPost, "/v1/objects", obj)
		if err != nil {
			return err
		}
	}
	if status >= 400 {
		return fmt.Errorf("%w: weaviate upsert %s %s failed: %d - %s",
			domain.ErrVectorStoreUnavailable, obj.Class, obj.ID, status, string(body))
	}
	return nil
}

// graphQLResponse is the typed shape of a Get query over the Fragment class
type graphQLResponse struct {
	Data struct {
		Get map[string][]fragmentHit `json:"Get"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type fragmentHit struct {
	DocID      string `json:"docId"`
	UserID     string `json:"userId"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
	Additional struct {
		ID        string  `json:"id"`
		Certainty float64 `json:"certainty"`
	} `json:"_additional"`
}

// Search returns the nearest fragments within the filter's tenant scope
func (s *VectorStore) Search(ctx context.Context, vector []float32, filter domain.SearchFilter, limit int) ([]*domain.ScoredFragment, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultRetrievalLimit
	}

	query, err := buildSearchQuery(vector, filter, limit)
	if err != nil {
		return nil, err
	}

	status, body, err := s.do(ctx, http.MethodPost, "/v1/graphql", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("%w: weaviate search failed: %d - %s", domain.ErrVectorStoreUnavailable, status, string(body))
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrVectorStoreUnavailable, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: weaviate graphql: %s", domain.ErrVectorStoreUnavailable, resp.Errors[0].Message)
	}

	hits := resp.Data.Get[FragmentClass]
	results := make([]*domain.ScoredFragment, 0, len(hits))
	for _, hit := range hits {
		results = append(results, &domain.ScoredFragment{
			Fragment: &domain.Fragment{
				ID:         hit.Additional.ID,
				DocumentID: hit.DocID,
				UserID:     hit.UserID,
				Ordinal:    hit.Page,
				Text:       hit.Text,
			},
			Certainty: hit.Additional.Certainty,
		})
	}
	return results, nil
}

// buildSearchQuery renders the GraphQL Get query. String values are JSON
// encoded, which is also a valid GraphQL string literal.
func buildSearchQuery(vector []float32, filter domain.SearchFilter, limit int) (string, error) {
	vec, err := json.Marshal(vector)
	if err != nil {
		return "", err
	}

	operands := []string{equalText("userId", filter.UserID)}
	if filter.DocumentID != "" {
		operands = append(operands, equalText("docId", filter.DocumentID))
	}

	where := operands[0]
	if len(operands) > 1 {
		where = fmt.Sprintf("{operator: And, operands: [%s]}", strings.Join(operands, ", "))
	}

	return fmt.Sprintf(
		"{ Get { %s(where: %s, nearVector: {vector: %s}, limit: %d) { docId userId page text _additional { id certainty } } } }",
		FragmentClass, where, vec, limit,
	), nil
}

func equalText(path, value string) string {
	quoted, _ := json.Marshal(value)
	return fmt.Sprintf("{path: [%q], operator: Equal, valueText: %s}", path, quoted)
}

// HealthCheck verifies Weaviate is ready
func (s *VectorStore) HealthCheck(ctx context.Context) error {
	status, _, err := s.do(ctx, http.MethodGet, "/v1/.well-known/ready", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: weaviate not ready: %d", domain.ErrVectorStoreUnavailable, status)
	}
	return nil
}

// do sends a JSON request and returns the status and body.
// Transport failures are reported as ErrVectorStoreUnavailable.
func (s *VectorStore) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrVectorStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read response: %v", domain.ErrVectorStoreUnavailable, err)
	}
	return resp.StatusCode, body, nil
}
