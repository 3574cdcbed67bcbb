package normalisers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// TextExtractor decodes plain text and Markdown as strict UTF-8.
type TextExtractor struct{}

// Extract returns data as text, normalising line endings.
// Invalid UTF-8 is rejected.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", domain.ErrUnsupportedFormat)
	}

	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.TrimSpace(content), nil
}

func (e *TextExtractor) SupportedTypes() []string {
	return []string{"text/*"}
}

func (e *TextExtractor) Priority() int {
	return 10
}
