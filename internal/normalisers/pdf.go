package normalisers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// PDFExtractor pulls the text layer out of PDF documents with docconv.
// docconv shells out to pdftotext, which must be on PATH.
type PDFExtractor struct {
	convert func(data []byte, mimeType string) (string, error)
}

// NewPDFExtractor creates a docconv-backed PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{convert: docconvConvert}
}

func docconvConvert(data []byte, mimeType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

// Extract returns the text of a PDF payload.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", fmt.Errorf("%w: missing PDF header", domain.ErrUnsupportedFormat)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := e.convert(data, mimeType)
	if err != nil {
		return "", fmt.Errorf("%w: pdf extraction: %v", domain.ErrUnsupportedFormat, err)
	}
	return strings.TrimSpace(text), nil
}

func (e *PDFExtractor) SupportedTypes() []string {
	return []string{"application/pdf"}
}

func (e *PDFExtractor) Priority() int {
	return 60
}
