package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// MockLLMService records generation requests and answers with a canned reply
type MockLLMService struct {
	mu       sync.Mutex
	reply    string
	fail     bool
	requests []driven.GenerationRequest

	// GenerateFn overrides Generate when set
	GenerateFn func(req driven.GenerationRequest) (string, error)
}

// NewMockLLMService creates a mock that answers every prompt with reply
func NewMockLLMService(reply string) *MockLLMService {
	return &MockLLMService{reply: reply}
}

func (m *MockLLMService) Generate(ctx context.Context, req driven.GenerationRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	fail, fn := m.fail, m.GenerateFn
	m.mu.Unlock()

	if fail {
		return "", domain.ErrGenerationUnavailable
	}
	if fn != nil {
		return fn(req)
	}
	return m.reply, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockLLMService) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// Requests returns a copy of every request received
func (m *MockLLMService) Requests() []driven.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.GenerationRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or a zero value
func (m *MockLLMService) LastRequest() driven.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return driven.GenerationRequest{}
	}
	return m.requests[len(m.requests)-1]
}
