package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.IngestionService = (*IngestionPipeline)(nil)

// IngestionPipeline runs one document through the indexing pipeline:
//  1. Extract text
//  2. Assign a document id
//  3. Chunk into word windows
//  4. Embed all fragments in one batch call
//  5. Upsert each fragment (best effort)
//  6. Save the DocumentRecord and mirror it to the vector store
type IngestionPipeline struct {
	extractors  driven.ExtractorRegistry
	chunker     driven.Chunker
	embedder    driven.EmbeddingService
	vectors     driven.VectorStore
	documents   driven.DocumentStore
	windowWords int
	now         func() time.Time
	logger      *slog.Logger
}

// IngestionConfig holds dependencies for IngestionPipeline.
type IngestionConfig struct {
	Extractors    driven.ExtractorRegistry
	Chunker       driven.Chunker
	Embedder      driven.EmbeddingService
	VectorStore   driven.VectorStore
	DocumentStore driven.DocumentStore

	// WindowWords is the maximum words per fragment (default 400)
	WindowWords int

	Logger *slog.Logger
}

// NewIngestionPipeline creates a new ingestion pipeline.
func NewIngestionPipeline(cfg IngestionConfig) *IngestionPipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	windowWords := cfg.WindowWords
	if windowWords <= 0 {
		windowWords = domain.DefaultWindowWords
	}

	return &IngestionPipeline{
		extractors:  cfg.Extractors,
		chunker:     cfg.Chunker,
		embedder:    cfg.Embedder,
		vectors:     cfg.VectorStore,
		documents:   cfg.DocumentStore,
		windowWords: windowWords,
		now:         time.Now,
		logger:      logger,
	}
}

// Ingest indexes one document and records it.
// A failed fragment upsert is logged and skipped; the record is saved as long
// as at least one fragment was indexed.
func (p *IngestionPipeline) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.DocumentRecord, error) {
	if err := validateIngestRequest(&req); err != nil {
		return nil, err
	}

	// Step 1: Extract text
	text, err := p.extractors.ExtractFile(ctx, req.FileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.FileName, err)
	}

	// Step 2: Assign id
	docID := req.DocumentID
	if docID == "" {
		docID = newID()
	}

	// Step 3: Chunk
	chunks := p.chunker.Chunk(text, p.windowWords)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s contains no text", domain.ErrInvalidInput, req.FileName)
	}

	// Step 4: Embed in one batch so vectors line up with chunks by position
	vectors, err := p.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	// Step 5: Upsert fragments
	indexed := 0
	for i, chunk := range chunks {
		fragment := &domain.Fragment{
			ID:         fragmentID(docID, i+1),
			DocumentID: docID,
			UserID:     req.UserID,
			Ordinal:    i + 1,
			Text:       chunk,
			Embedding:  vectors[i],
		}
		if err := p.vectors.UpsertFragment(ctx, fragment); err != nil {
			p.logger.Warn("failed to index fragment",
				"doc_id", docID,
				"ordinal", fragment.Ordinal,
				"error", err,
			)
			continue
		}
		indexed++
	}
	if indexed == 0 {
		return nil, fmt.Errorf("%w: no fragments of %s were indexed", domain.ErrVectorStoreUnavailable, docID)
	}
	if indexed < len(chunks) {
		p.logger.Warn("document partially indexed",
			"doc_id", docID,
			"indexed", indexed,
			"fragments", len(chunks),
		)
	}

	// Step 6: Record the document
	record := &domain.DocumentRecord{
		ID:         docID,
		UserID:     req.UserID,
		FileName:   req.FileName,
		Source:     req.Source,
		ExternalID: req.ExternalID,
		StorageKey: req.StorageKey,
		SizeBytes:  int64(len(req.Data)),
		Workspace:  req.Workspace,
		Words:      countWords(chunks),
		Pages:      len(chunks),
		Processed:  true,
		CreatedAt:  p.now().UTC(),
	}
	if err := p.documents.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("save document %s: %w", docID, err)
	}
	if err := p.vectors.UpsertDocument(ctx, record); err != nil {
		p.logger.Warn("failed to mirror document to vector store", "doc_id", docID, "error", err)
	}

	p.logger.Info("document ingested",
		"doc_id", docID,
		"user_id", req.UserID,
		"source", req.Source,
		"fragments", indexed,
	)
	return record, nil
}

// embed requests all vectors in one call and checks the response shape
func (p *IngestionPipeline) embed(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d fragments", domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	dims := p.embedder.Dimensions()
	if dims <= 0 {
		dims = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrEmbeddingUnavailable, i, len(v), dims)
		}
	}
	return vectors, nil
}

func validateIngestRequest(req *driving.IngestRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.FileName) == "" {
		return fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if !req.Source.Valid() {
		return fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, req.Source)
	}
	if req.Workspace == "" {
		req.Workspace = domain.DefaultWorkspace
	}
	return nil
}

func countWords(chunks []string) int {
	n := 0
	for _, c := range chunks {
		n += len(strings.Fields(c))
	}
	return n
}
