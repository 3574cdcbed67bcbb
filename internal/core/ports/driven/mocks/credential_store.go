package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockCredentialStore is a mock implementation of CredentialStore for testing
type MockCredentialStore struct {
	mu    sync.Mutex
	creds map[string]*domain.Credential
	saves int

	moveErr error
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		creds: make(map[string]*domain.Credential),
	}
}

func (m *MockCredentialStore) Get(ctx context.Context, key string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockCredentialStore) Save(ctx context.Context, cred *domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cred
	m.creds[cred.Key] = &cp
	m.saves++
	return nil
}

func (m *MockCredentialStore) Move(ctx context.Context, fromKey, toKey string, updatedAt time.Time) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.creds[fromKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.moveErr != nil {
		return nil, m.moveErr
	}
	bound := c.Rebind(toKey, updatedAt)
	delete(m.creds, fromKey)
	m.creds[toKey] = bound
	cp := *bound
	return &cp, nil
}

func (m *MockCredentialStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, key)
	return nil
}

// Helper methods for testing

// SetMoveError makes Move fail with err, leaving the records untouched
func (m *MockCredentialStore) SetMoveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveErr = err
}

// Saves returns how many times Save was called
func (m *MockCredentialStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Has reports whether a credential exists under key
func (m *MockCredentialStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.creds[key]
	return ok
}
