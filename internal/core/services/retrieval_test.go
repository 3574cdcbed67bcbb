package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven/mocks"
)

type retrievalFixture struct {
	orchestrator *RetrievalOrchestrator
	embedder     *mocks.MockEmbeddingService
	vectors      *mocks.MockVectorStore
	llm          *mocks.MockLLMService
}

func newRetrievalFixture(t *testing.T) *retrievalFixture {
	t.Helper()

	f := &retrievalFixture{
		embedder: mocks.NewMockEmbeddingService(),
		vectors:  mocks.NewMockVectorStore(),
		llm:      mocks.NewMockLLMService("generated answer"),
	}
	f.orchestrator = NewRetrievalOrchestrator(RetrievalConfig{
		Embedder:    f.embedder,
		VectorStore: f.vectors,
		LLM:         f.llm,
	})
	return f
}

// index stores one fragment embedded with the fixture's embedder
func (f *retrievalFixture) index(t *testing.T, userID, docID string, ordinal int, text string) {
	t.Helper()
	vec, err := f.embedder.EmbedQuery(context.Background(), text)
	require.NoError(t, err)
	require.NoError(t, f.vectors.UpsertFragment(context.Background(), &domain.Fragment{
		ID:         fragmentID(docID, ordinal),
		DocumentID: docID,
		UserID:     userID,
		Ordinal:    ordinal,
		Text:       text,
		Embedding:  vec,
	}))
}

func TestAnswer_BlankQuery(t *testing.T) {
	f := newRetrievalFixture(t)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: q})
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("query %q: expected ErrInvalidQuery, got %v", q, err)
		}
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("query %q: ErrInvalidQuery should be invalid input", q)
		}
	}
	if len(f.llm.Requests()) != 0 {
		t.Errorf("generation must not run for an invalid query")
	}
}

func TestAnswer_WithContext(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "u1", "doc-1", 1, "the renewal clause requires ninety days notice")
	f.index(t, "u1", "doc-1", 2, "payment terms are net thirty")

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{
		UserID: "u1",
		Query:  "  what does the renewal clause require  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated answer", answer.Text)
	assert.False(t, answer.Degraded)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, 1, answer.Sources[0].Page, "the closest fragment comes first")
	assert.Equal(t, "doc-1", answer.Sources[0].DocumentID)
	assert.GreaterOrEqual(t, answer.Sources[0].Score, answer.Sources[1].Score)

	req := f.llm.LastRequest()
	assert.Equal(t, DefaultSystemPrompt, req.System)
	assert.Equal(t, DefaultTemperature, req.Temperature)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.Equal(t,
		"Context:\nPage 1: the renewal clause requires ninety days notice\n\nPage 2: payment terms are net thirty\n\nQuestion:\nwhat does the renewal clause require",
		req.Prompt)
}

// rankedVectorStore returns fixed hits in the order given
type rankedVectorStore struct {
	*mocks.MockVectorStore
	hits []*domain.ScoredFragment
}

func (s *rankedVectorStore) Search(ctx context.Context, vector []float32, filter domain.SearchFilter, limit int) ([]*domain.ScoredFragment, error) {
	return s.hits, nil
}

func TestAnswer_ContextFollowsSimilarityOrder(t *testing.T) {
	store := &rankedVectorStore{
		MockVectorStore: mocks.NewMockVectorStore(),
		hits: []*domain.ScoredFragment{
			{Fragment: &domain.Fragment{DocumentID: "doc-1", UserID: "u1", Ordinal: 3, Text: "third"}, Certainty: 0.9},
			{Fragment: &domain.Fragment{DocumentID: "doc-1", UserID: "u1", Ordinal: 1, Text: "first"}, Certainty: 0.5},
		},
	}
	llm := mocks.NewMockLLMService("generated answer")
	orchestrator := NewRetrievalOrchestrator(RetrievalConfig{
		Embedder:    mocks.NewMockEmbeddingService(),
		VectorStore: store,
		LLM:         llm,
	})

	answer, err := orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "q"})
	require.NoError(t, err)

	assert.Equal(t, "Context:\nPage 3: third\n\nPage 1: first\n\nQuestion:\nq", llm.LastRequest().Prompt)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, 3, answer.Sources[0].Page)
	assert.Equal(t, 0.9, answer.Sources[0].Score)
	assert.Equal(t, 1, answer.Sources[1].Page)
	assert.Equal(t, 0.5, answer.Sources[1].Score)
}

func TestAnswer_NoFragmentsDegrades(t *testing.T) {
	f := newRetrievalFixture(t)

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "what is RAG?"})
	require.NoError(t, err)

	assert.NotEmpty(t, answer.Text)
	assert.True(t, answer.Degraded)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "what is RAG?", f.llm.LastRequest().Prompt)
}

func TestAnswer_TenantIsolation(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "alice", "doc-a", 1, "alice private budget figures")
	f.index(t, "bob", "doc-b", 1, "bob private budget figures")

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "alice", Query: "budget figures"})
	require.NoError(t, err)

	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc-a", answer.Sources[0].DocumentID)
	assert.NotContains(t, f.llm.LastRequest().Prompt, "bob")

	for _, filter := range f.vectors.Searches() {
		assert.Equal(t, "alice", filter.UserID, "every search carries the user filter")
	}
}

func TestAnswer_DocumentFilter(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "u1", "doc-1", 1, "shared topic in first document")
	f.index(t, "u1", "doc-2", 1, "shared topic in second document")
	f.index(t, "u1", "doc-2", 2, "more shared topic in second document")

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{
		UserID:     "u1",
		Query:      "shared topic",
		DocumentID: "doc-2",
	})
	require.NoError(t, err)

	require.Len(t, answer.Sources, 2)
	for _, src := range answer.Sources {
		assert.Equal(t, "doc-2", src.DocumentID)
	}
}

func TestAnswer_UnknownDocumentFilterDegrades(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "u1", "doc-1", 1, "some indexed text")

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{
		UserID:     "u1",
		Query:      "some text",
		DocumentID: "missing",
	})
	require.NoError(t, err)
	assert.True(t, answer.Degraded)
	assert.Empty(t, answer.Sources)
}

func TestAnswer_LimitsToFourNearest(t *testing.T) {
	f := newRetrievalFixture(t)
	for i := 1; i <= 6; i++ {
		f.index(t, "u1", "doc-1", i, strings.Repeat("alpha ", i)+"beta")
	}

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "alpha beta"})
	require.NoError(t, err)

	require.Len(t, answer.Sources, domain.DefaultRetrievalLimit)
	for i := 1; i < len(answer.Sources); i++ {
		assert.GreaterOrEqual(t, answer.Sources[i-1].Score, answer.Sources[i].Score)
	}
}

func TestAnswer_ExcerptLength(t *testing.T) {
	f := newRetrievalFixture(t)
	long := strings.Repeat("lengthy ", 100)
	f.index(t, "u1", "doc-1", 1, long)

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "lengthy"})
	require.NoError(t, err)
	require.Len(t, answer.Sources, 1)
	assert.Len(t, answer.Sources[0].Excerpt, domain.ExcerptLength)
}

func TestAnswer_EmbeddingFailureDegrades(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "u1", "doc-1", 1, "indexed text")
	f.embedder.SetFailNext(true)

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "indexed text"})
	require.NoError(t, err)

	assert.True(t, answer.Degraded)
	assert.Empty(t, answer.Sources)
	assert.Empty(t, f.vectors.Searches(), "search is skipped without a query vector")
	assert.Equal(t, "indexed text", f.llm.LastRequest().Prompt)
}

func TestAnswer_SearchFailureDegrades(t *testing.T) {
	f := newRetrievalFixture(t)
	f.index(t, "u1", "doc-1", 1, "indexed text")
	f.vectors.SetSearchError(domain.ErrVectorStoreUnavailable)

	answer, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "indexed text"})
	require.NoError(t, err)
	assert.True(t, answer.Degraded)
	assert.Empty(t, answer.Sources)
}

func TestAnswer_GenerationFailureIsTerminal(t *testing.T) {
	f := newRetrievalFixture(t)
	f.llm.SetFail(true)

	_, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "anything"})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAnswer_EmptyCompletion(t *testing.T) {
	f := newRetrievalFixture(t)
	f.llm = mocks.NewMockLLMService("   ")
	f.orchestrator = NewRetrievalOrchestrator(RetrievalConfig{Embedder: f.embedder, VectorStore: f.vectors, LLM: f.llm})

	_, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{UserID: "u1", Query: "anything"})
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestAnswer_RequiresUser(t *testing.T) {
	f := newRetrievalFixture(t)

	_, err := f.orchestrator.Answer(context.Background(), domain.SearchRequest{Query: "anything"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildPrompt(t *testing.T) {
	fragments := []*domain.ScoredFragment{
		{Fragment: &domain.Fragment{Ordinal: 3, Text: "third"}, Certainty: 0.9},
		{Fragment: &domain.Fragment{Ordinal: 1, Text: "first"}, Certainty: 0.8},
	}

	got := BuildPrompt("why?", fragments)
	want := "Context:\nPage 3: third\n\nPage 1: first\n\nQuestion:\nwhy?"
	if got != want {
		t.Errorf("BuildPrompt() = %q, want %q", got, want)
	}
}
