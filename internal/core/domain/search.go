package domain

import "time"

// DefaultRetrievalLimit is the number of nearest fragments fetched per query
const DefaultRetrievalLimit = 4

// ExcerptLength caps the excerpt returned per source
const ExcerptLength = 200

// SearchRequest is a natural-language question scoped to one user
type SearchRequest struct {
	UserID     string `json:"-"`
	Query      string `json:"query" example:"What does the contract say about renewals?"`
	DocumentID string `json:"docId,omitempty"`
}

// SourceRef points at one fragment used to build an answer
type SourceRef struct {
	DocumentID string  `json:"doc_id"`
	Page       int     `json:"page"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
}

// Answer is the result of a retrieval request.
// Degraded is set when no retrieved context was used.
type Answer struct {
	Text     string        `json:"answer"`
	Sources  []SourceRef   `json:"sources"`
	Degraded bool          `json:"degraded"`
	Took     time.Duration `json:"took" swaggertype:"integer" example:"1500000"`
}

// Excerpt shortens text to at most n runes
func Excerpt(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
