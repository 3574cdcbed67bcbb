package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

var (
	_ driven.EmbeddingService = (*GeminiEmbedding)(nil)
	_ driven.LLMService       = (*GeminiLLM)(nil)
)

const (
	DefaultGeminiEmbeddingModel = "gemini-embedding-001"
	DefaultGeminiChatModel      = "gemini-1.5-flash"
)

// GeminiEmbedding implements EmbeddingService with the Gemini batch embed API
type GeminiEmbedding struct {
	client    *genai.Client
	modelName string

	mu         sync.RWMutex
	dimensions int
}

// NewGeminiEmbedding creates a Gemini embedding client
func NewGeminiEmbedding(ctx context.Context, apiKey, modelName string, dimensions int) (*GeminiEmbedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", domain.ErrInvalidInput)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if modelName == "" {
		modelName = DefaultGeminiEmbeddingModel
	}
	return &GeminiEmbedding{client: cl, modelName: modelName, dimensions: dimensions}, nil
}

// Embed batches all texts in one request
func (g *GeminiEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini batch embed: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrEmbeddingUnavailable, len(texts), len(resp.Embeddings))
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, fmt.Errorf("%w: empty gemini embedding", domain.ErrEmbeddingUnavailable)
		}
		out = append(out, e.Values)
	}

	g.mu.Lock()
	if g.dimensions == 0 {
		g.dimensions = len(out[0])
	}
	g.mu.Unlock()
	return out, nil
}

// EmbedQuery embeds a single query
func (g *GeminiEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	out, err := g.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (g *GeminiEmbedding) Dimensions() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.dimensions
}

func (g *GeminiEmbedding) Model() string {
	return g.modelName
}

func (g *GeminiEmbedding) HealthCheck(ctx context.Context) error {
	_, err := g.EmbedQuery(ctx, "health check")
	return err
}

func (g *GeminiEmbedding) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// GeminiLLM implements LLMService with Gemini content generation
type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

// NewGeminiLLM creates a Gemini generation client
func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is required", domain.ErrInvalidInput)
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", domain.ErrGenerationUnavailable, err)
	}
	if modelName == "" {
		modelName = DefaultGeminiChatModel
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

// Generate concatenates the text parts of the first candidate
func (g *GeminiLLM) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	m := g.client.GenerativeModel(g.modelName)
	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	m.SetTemperature(float32(req.Temperature))
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate: %v", domain.ErrGenerationUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: no candidates returned", domain.ErrGenerationUnavailable)
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func (g *GeminiLLM) Model() string {
	return g.modelName
}

// Ping counts tokens of a short prompt, which needs no generation quota
func (g *GeminiLLM) Ping(ctx context.Context) error {
	if _, err := g.client.GenerativeModel(g.modelName).CountTokens(ctx, genai.Text("ping")); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	return nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
