package weaviate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/vectormind/internal/core/domain"
)

type classProperty struct {
	Name         string   `json:"name"`
	DataType     []string `json:"dataType"`
	Tokenization string   `json:"tokenization,omitempty"`
}

// idProperty is an identifier matched by exact value. Field tokenization
// keeps Equal filters from matching on word tokens ("alice" vs "alice-smith").
func idProperty(name string) classProperty {
	return classProperty{Name: name, DataType: []string{"text"}, Tokenization: "field"}
}

type classDefinition struct {
	Class      string          `json:"class"`
	Vectorizer string          `json:"vectorizer"`
	Properties []classProperty `json:"properties"`
}

// schemaClasses are the classes the store writes to. Vectors are supplied by
// the caller so no vectorizer module is configured.
var schemaClasses = []classDefinition{
	{
		Class:      FragmentClass,
		Vectorizer: "none",
		Properties: []classProperty{
			idProperty("docId"),
			idProperty("userId"),
			{Name: "page", DataType: []string{"int"}},
			{Name: "text", DataType: []string{"text"}},
		},
	},
	{
		Class:      DocumentClass,
		Vectorizer: "none",
		Properties: []classProperty{
			idProperty("docId"),
			idProperty("userId"),
			{Name: "title", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			idProperty("externalId"),
			{Name: "workspace", DataType: []string{"text"}},
			{Name: "pages", DataType: []string{"int"}},
			{Name: "processed", DataType: []string{"boolean"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	},
}

// EnsureSchema creates the Fragment and Document classes when missing.
// It returns the names of the classes it created.
func (s *VectorStore) EnsureSchema(ctx context.Context) ([]string, error) {
	var created []string
	for _, class := range schemaClasses {
		status, body, err := s.do(ctx, http.MethodGet, "/v1/schema/"+class.Class, nil)
		if err != nil {
			return created, err
		}
		if status == http.StatusOK {
			continue
		}
		if status != http.StatusNotFound {
			return created, fmt.Errorf("%w: read class %s: %d - %s", domain.ErrVectorStoreUnavailable, class.Class, status, string(body))
		}

		status, body, err = s.do(ctx, http.MethodPost, "/v1/schema", class)
		if err != nil {
			return created, err
		}
		if status >= 400 {
			return created, fmt.Errorf("%w: create class %s: %d - %s", domain.ErrVectorStoreUnavailable, class.Class, status, string(body))
		}
		created = append(created, class.Class)
	}
	return created, nil
}
