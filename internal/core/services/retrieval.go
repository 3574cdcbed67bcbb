package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Generation defaults
const (
	DefaultSystemPrompt = "You are a helpful assistant. Answer from context if provided; otherwise from your general knowledge."
	DefaultTemperature  = 0.2
	DefaultMaxTokens    = 512
)

// Verify interface compliance
var _ driving.RetrievalService = (*RetrievalOrchestrator)(nil)

// RetrievalOrchestrator answers a question from the user's fragments.
// Embedding and search failures degrade to a context-free answer;
// generation failures are terminal.
type RetrievalOrchestrator struct {
	embedder     driven.EmbeddingService
	vectors      driven.VectorStore
	llm          driven.LLMService
	limit        int
	systemPrompt string
	temperature  float64
	maxTokens    int
	logger       *slog.Logger
}

// RetrievalConfig holds dependencies for RetrievalOrchestrator.
type RetrievalConfig struct {
	Embedder    driven.EmbeddingService
	VectorStore driven.VectorStore
	LLM         driven.LLMService

	// Limit is the number of fragments retrieved (default 4)
	Limit        int
	SystemPrompt string
	Temperature  float64
	MaxTokens    int

	Logger *slog.Logger
}

// NewRetrievalOrchestrator creates a new retrieval orchestrator.
func NewRetrievalOrchestrator(cfg RetrievalConfig) *RetrievalOrchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	o := &RetrievalOrchestrator{
		embedder:     cfg.Embedder,
		vectors:      cfg.VectorStore,
		llm:          cfg.LLM,
		limit:        cfg.Limit,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		logger:       logger,
	}
	if o.limit <= 0 {
		o.limit = domain.DefaultRetrievalLimit
	}
	if o.systemPrompt == "" {
		o.systemPrompt = DefaultSystemPrompt
	}
	if o.temperature <= 0 {
		o.temperature = DefaultTemperature
	}
	if o.maxTokens <= 0 {
		o.maxTokens = DefaultMaxTokens
	}
	return o
}

// Answer retrieves context and generates an answer.
func (o *RetrievalOrchestrator) Answer(ctx context.Context, req domain.SearchRequest) (*domain.Answer, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	filter := domain.SearchFilter{UserID: req.UserID, DocumentID: strings.TrimSpace(req.DocumentID)}
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: user id is required", err)
	}

	fragments := o.retrieve(ctx, query, filter)

	prompt := query
	if len(fragments) > 0 {
		prompt = BuildPrompt(query, fragments)
	}

	text, err := o.llm.Generate(ctx, driven.GenerationRequest{
		System:      o.systemPrompt,
		Prompt:      prompt,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		if errors.Is(err, domain.ErrGenerationUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty completion", domain.ErrGenerationUnavailable)
	}

	sources := make([]domain.SourceRef, 0, len(fragments))
	for _, sf := range fragments {
		sources = append(sources, domain.SourceRef{
			DocumentID: sf.Fragment.DocumentID,
			Page:       sf.Fragment.Ordinal,
			Excerpt:    domain.Excerpt(sf.Fragment.Text, domain.ExcerptLength),
			Score:      sf.Certainty,
		})
	}

	return &domain.Answer{
		Text:     text,
		Sources:  sources,
		Degraded: len(fragments) == 0,
		Took:     time.Since(start),
	}, nil
}

// retrieve embeds the query and searches the user's fragments.
// Returns nil when retrieval degrades.
func (o *RetrievalOrchestrator) retrieve(ctx context.Context, query string, filter domain.SearchFilter) []*domain.ScoredFragment {
	vector, err := o.embedder.EmbedQuery(ctx, query)
	if err != nil {
		o.logger.Warn("query embedding failed, answering without context",
			"user_id", filter.UserID,
			"error", err,
		)
		return nil
	}

	results, err := o.vectors.Search(ctx, vector, filter, o.limit)
	if err != nil {
		o.logger.Warn("vector search failed, answering without context",
			"user_id", filter.UserID,
			"error", err,
		)
		return nil
	}

	// The store applied the filter; anything outside it is dropped.
	scoped := results[:0]
	for _, sf := range results {
		if sf == nil || sf.Fragment == nil {
			continue
		}
		if sf.Fragment.UserID != filter.UserID {
			o.logger.Warn("vector store returned fragment outside user scope", "doc_id", sf.Fragment.DocumentID)
			continue
		}
		if filter.DocumentID != "" && sf.Fragment.DocumentID != filter.DocumentID {
			continue
		}
		scoped = append(scoped, sf)
	}
	if len(scoped) > o.limit {
		scoped = scoped[:o.limit]
	}
	if len(scoped) == 0 {
		o.logger.Info("no fragments matched, answering without context",
			"user_id", filter.UserID,
			"doc_id", filter.DocumentID,
		)
		return nil
	}
	return scoped
}

// BuildPrompt formats retrieved fragments, in retrieval order, ahead of the question.
func BuildPrompt(query string, fragments []*domain.ScoredFragment) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, sf := range fragments {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Page ")
		b.WriteString(strconv.Itoa(sf.Fragment.Ordinal))
		b.WriteString(": ")
		b.WriteString(sf.Fragment.Text)
	}
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(query)
	return b.String()
}
