package ai

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

// Ensure ChatLLM implements LLMService
var _ driven.LLMService = (*ChatLLM)(nil)

// DefaultChatModel is used when no model is configured
const DefaultChatModel = "gpt-4o-mini"

// ChatLLM implements LLMService against a chat-completion endpoint
// (POST /chat with messages, answer in choices[0].message.content).
type ChatLLM struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewChatLLM creates a new chat completion client
func NewChatLLM(baseURL, apiKey, model string, timeout time.Duration) (*ChatLLM, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: LLM URL is required", domain.ErrInvalidInput)
	}
	if model == "" {
		model = DefaultChatModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ChatLLM{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []driven.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Index   int                `json:"index"`
		Message driven.ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate returns the first choice's content
func (c *ChatLLM) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	messages := make([]driven.ChatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, driven.ChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, driven.ChatMessage{Role: "user", Content: req.Prompt})

	resp, err := c.doRequest(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", domain.ErrGenerationUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name being used
func (c *ChatLLM) Model() string {
	return c.model
}

// Ping sends a one-token completion
func (c *ChatLLM) Ping(ctx context.Context) error {
	_, err := c.Generate(ctx, driven.GenerationRequest{Prompt: "ping", MaxTokens: 1})
	return err
}

// Close releases idle connections
func (c *ChatLLM) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *ChatLLM) doRequest(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrGenerationUnavailable, err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: parse response: %v", domain.ErrGenerationUnavailable, err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("%w: %s (type: %s)", domain.ErrGenerationUnavailable, chatResp.Error.Message, chatResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrGenerationUnavailable, resp.StatusCode)
	}

	return &chatResp, nil
}
