package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// MockDriveClient serves a fixed set of files from memory
type MockDriveClient struct {
	mu        sync.Mutex
	files     []*domain.DriveFile
	contents  map[string][]byte
	failing   map[string]bool
	listErr   error
	tokens    []string
	downloads int
}

// NewMockDriveClient creates an empty drive
func NewMockDriveClient() *MockDriveClient {
	return &MockDriveClient{
		contents: make(map[string][]byte),
		failing:  make(map[string]bool),
	}
}

// AddFile adds a file with the given content; Size is taken from len(data)
func (m *MockDriveClient) AddFile(id, name, mimeType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, &domain.DriveFile{ID: id, Name: name, MimeType: mimeType, Size: int64(len(data))})
	m.contents[id] = data
}

// FailDownload makes downloads of fileID fail
func (m *MockDriveClient) FailDownload(fileID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[fileID] = true
}

func (m *MockDriveClient) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func (m *MockDriveClient) ListFiles(ctx context.Context, tokens driven.TokenProvider, mimeType string) ([]*domain.DriveFile, error) {
	token, err := tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, token)
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.DriveFile
	for _, f := range m.files {
		if mimeType == "" || f.MimeType == mimeType {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockDriveClient) Download(ctx context.Context, tokens driven.TokenProvider, fileID string) ([]byte, error) {
	if _, err := tokens.GetAccessToken(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads++
	if m.failing[fileID] {
		return nil, fmt.Errorf("%w: download %s", domain.ErrDriveUnavailable, fileID)
	}
	data, ok := m.contents[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// Downloads returns how many downloads were attempted
func (m *MockDriveClient) Downloads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.downloads
}

// Tokens returns the access tokens seen by ListFiles
func (m *MockDriveClient) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}
