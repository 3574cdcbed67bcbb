package mocks

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// MockExtractorRegistry treats every known file type as UTF-8 text.
// Payloads starting with CorruptMarker fail extraction.
type MockExtractorRegistry struct {
	// ExtractFn overrides ExtractFile when set
	ExtractFn func(fileName string, data []byte) (string, error)
}

// CorruptMarker prefixes payloads the mock refuses to parse
const CorruptMarker = "%CORRUPT"

// NewMockExtractorRegistry creates a new MockExtractorRegistry
func NewMockExtractorRegistry() *MockExtractorRegistry {
	return &MockExtractorRegistry{}
}

func (m *MockExtractorRegistry) Get(mimeType string) driven.TextExtractor {
	return nil
}

func (m *MockExtractorRegistry) Register(extractor driven.TextExtractor) {}

func (m *MockExtractorRegistry) ExtractFile(ctx context.Context, fileName string, data []byte) (string, error) {
	if m.ExtractFn != nil {
		return m.ExtractFn(fileName, data)
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf", ".txt", ".md":
	default:
		return "", domain.ErrUnsupportedFormat
	}
	if strings.HasPrefix(string(data), CorruptMarker) {
		return "", domain.ErrUnsupportedFormat
	}
	return string(data), nil
}

func (m *MockExtractorRegistry) List() []string {
	return []string{"application/pdf", "text/plain", "text/markdown"}
}
