package pgvec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

func TestSearchQuery_UserScope(t *testing.T) {
	q, args := searchQuery([]float32{1, 2}, domain.SearchFilter{UserID: "user-1"}, 4)

	if !strings.Contains(q, "WHERE user_id = $2") {
		t.Errorf("expected user filter, got %s", q)
	}
	if strings.Contains(q, "document_id = $3") {
		t.Errorf("unexpected document filter in %s", q)
	}
	if !strings.Contains(q, "LIMIT $3") {
		t.Errorf("expected limit placeholder $3, got %s", q)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
	if v, ok := args[0].(pgvector.Vector); !ok || len(v.Slice()) != 2 {
		t.Errorf("expected pgvector.Vector first arg, got %T", args[0])
	}
	if args[1] != "user-1" || args[2] != 4 {
		t.Errorf("unexpected args %v", args[1:])
	}
}

func TestSearchQuery_DocumentScope(t *testing.T) {
	q, args := searchQuery([]float32{1}, domain.SearchFilter{UserID: "user-1", DocumentID: "doc-9"}, 2)

	if !strings.Contains(q, "user_id = $2 AND document_id = $3") {
		t.Errorf("expected user and document filter, got %s", q)
	}
	if !strings.Contains(q, "LIMIT $4") {
		t.Errorf("expected limit placeholder $4, got %s", q)
	}
	if args[2] != "doc-9" || args[3] != 2 {
		t.Errorf("unexpected args %v", args)
	}
}

func TestOpen_Validation(t *testing.T) {
	if _, err := Open(context.Background(), "", 384); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty url, got %v", err)
	}
	if _, err := Open(context.Background(), "postgres://localhost/db", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for zero dimensions, got %v", err)
	}
}

func TestSearch_RequiresUser(t *testing.T) {
	store := NewVectorStore(nil)
	if _, err := store.Search(context.Background(), []float32{1}, domain.SearchFilter{}, 4); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
