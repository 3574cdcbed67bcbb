package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockURLFetcher serves registered URLs from memory
type MockURLFetcher struct {
	mu    sync.Mutex
	pages map[string][]byte
}

// NewMockURLFetcher creates a new MockURLFetcher
func NewMockURLFetcher() *MockURLFetcher {
	return &MockURLFetcher{pages: make(map[string][]byte)}
}

// Set registers content for url
func (m *MockURLFetcher) Set(url string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = data
}

func (m *MockURLFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.pages[url]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return data, "text/plain", nil
}
