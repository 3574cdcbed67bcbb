package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

// MockVectorStore is an in-memory VectorStore ranking by cosine similarity
type MockVectorStore struct {
	mu        sync.RWMutex
	fragments map[string]*domain.Fragment
	order     []string
	documents map[string]*domain.DocumentRecord

	searchErr error
	searches  []domain.SearchFilter

	// UpsertFragmentFn, when set, runs before each fragment write; a non-nil error rejects the write
	UpsertFragmentFn func(f *domain.Fragment) error
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		fragments: make(map[string]*domain.Fragment),
		documents: make(map[string]*domain.DocumentRecord),
	}
}

func (m *MockVectorStore) UpsertFragment(ctx context.Context, fragment *domain.Fragment) error {
	if m.UpsertFragmentFn != nil {
		if err := m.UpsertFragmentFn(fragment); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.fragments[fragment.ID]; !exists {
		m.order = append(m.order, fragment.ID)
	}
	cp := *fragment
	m.fragments[fragment.ID] = &cp
	return nil
}

func (m *MockVectorStore) UpsertDocument(ctx context.Context, doc *domain.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.documents[doc.ID] = &cp
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, vector []float32, filter domain.SearchFilter, limit int) ([]*domain.ScoredFragment, error) {
	m.mu.Lock()
	m.searches = append(m.searches, filter)
	err := m.searchErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*domain.ScoredFragment
	for _, id := range m.order {
		f := m.fragments[id]
		if f.UserID != filter.UserID {
			continue
		}
		if filter.DocumentID != "" && f.DocumentID != filter.DocumentID {
			continue
		}
		cp := *f
		results = append(results, &domain.ScoredFragment{
			Fragment:  &cp,
			Certainty: certainty(vector, f.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Certainty > results[j].Certainty
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	return nil
}

// certainty maps cosine similarity into [0,1] the way Weaviate reports it
func certainty(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return (1 + cos) / 2
}

// Helper methods for testing

func (m *MockVectorStore) SetSearchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchErr = err
}

// Fragments returns every stored fragment of a document ordered by ordinal
func (m *MockVectorStore) Fragments(docID string) []*domain.Fragment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Fragment
	for _, id := range m.order {
		if f := m.fragments[id]; f.DocumentID == docID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// FragmentCount returns the total number of stored fragments
func (m *MockVectorStore) FragmentCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.fragments)
}

// Document returns the mirrored document object, or nil
func (m *MockVectorStore) Document(id string) *domain.DocumentRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[id]
}

// Searches returns every filter Search was called with
func (m *MockVectorStore) Searches() []domain.SearchFilter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SearchFilter, len(m.searches))
	copy(out, m.searches)
	return out
}
