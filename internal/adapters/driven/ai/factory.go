package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Provider names accepted by the factory
const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
)

// FactoryConfig selects and configures the embedding and LLM providers
type FactoryConfig struct {
	EmbeddingProvider   string
	EmbeddingURL        string
	EmbeddingDimensions int

	LLMProvider string
	LLMURL      string
	LLMAPIKey   string
	LLMModel    string

	GeminiAPIKey string
	Timeout      time.Duration
}

// Factory creates AI services based on configuration
type Factory struct {
	cfg FactoryConfig
}

// NewFactory creates a new AI service factory
func NewFactory(cfg FactoryConfig) *Factory {
	if cfg.EmbeddingProvider == "" {
		cfg.EmbeddingProvider = ProviderHTTP
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderHTTP
	}
	return &Factory{cfg: cfg}
}

// CreateEmbeddingService creates the configured embedding service
func (f *Factory) CreateEmbeddingService(ctx context.Context) (driven.EmbeddingService, error) {
	switch f.cfg.EmbeddingProvider {
	case ProviderHTTP:
		return NewHTTPEmbedding(f.cfg.EmbeddingURL, f.cfg.EmbeddingDimensions, f.cfg.Timeout)
	case ProviderGemini:
		return NewGeminiEmbedding(ctx, f.cfg.GeminiAPIKey, "", f.cfg.EmbeddingDimensions)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, f.cfg.EmbeddingProvider)
	}
}

// CreateLLMService creates the configured LLM service
func (f *Factory) CreateLLMService(ctx context.Context) (driven.LLMService, error) {
	switch f.cfg.LLMProvider {
	case ProviderHTTP:
		return NewChatLLM(f.cfg.LLMURL, f.cfg.LLMAPIKey, f.cfg.LLMModel, f.cfg.Timeout)
	case ProviderGemini:
		apiKey := f.cfg.GeminiAPIKey
		if apiKey == "" {
			apiKey = f.cfg.LLMAPIKey
		}
		return NewGeminiLLM(ctx, apiKey, f.cfg.LLMModel)
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidInput, f.cfg.LLMProvider)
	}
}
