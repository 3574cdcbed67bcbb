package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.DocumentRecord
	saveErr   error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		documents: make(map[string]*domain.DocumentRecord),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *doc
	m.documents[doc.ID] = &cp
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MockDocumentStore) GetForUser(ctx context.Context, id, userID string) (*domain.DocumentRecord, error) {
	doc, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) ListByUser(ctx context.Context, userID string) ([]*domain.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.DocumentRecord
	for _, doc := range m.documents {
		if doc.UserID == userID {
			cp := *doc
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockDocumentStore) CountByUser(ctx context.Context, userID string) (int, error) {
	docs, err := m.ListByUser(ctx, userID)
	return len(docs), err
}

func (m *MockDocumentStore) RecordAccess(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Touch(at)
	return nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, id)
	return nil
}

// Helper methods for testing

func (m *MockDocumentStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *MockDocumentStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents)
}

// All returns every stored record
func (m *MockDocumentStore) All() []*domain.DocumentRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.DocumentRecord, 0, len(m.documents))
	for _, doc := range m.documents {
		cp := *doc
		out = append(out, &cp)
	}
	return out
}
