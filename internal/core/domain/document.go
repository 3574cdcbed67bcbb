package domain

import "time"

// DefaultWindowWords is the number of words per fragment when none is configured
const DefaultWindowWords = 400

// SourceKind identifies where a document's bytes came from
type SourceKind string

const (
	SourceUpload   SourceKind = "upload"
	SourceDrive    SourceKind = "drive"
	SourceExternal SourceKind = "external"
)

// Valid reports whether the kind is one of the known sources
func (k SourceKind) Valid() bool {
	switch k {
	case SourceUpload, SourceDrive, SourceExternal:
		return true
	}
	return false
}

// DefaultWorkspace is the workspace tag used when the caller gives none
const DefaultWorkspace = "default"

// DocumentRecord represents one ingested document.
// It exists only once at least one of its fragments was indexed.
type DocumentRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	FileName   string     `json:"file_name"`
	Source     SourceKind `json:"source"`
	ExternalID string     `json:"external_id,omitempty"` // Drive-native file id
	StorageKey string     `json:"storage_key,omitempty"` // Blob key for uploaded/external bytes
	SizeBytes  int64      `json:"size_bytes"`
	Workspace  string     `json:"workspace"`
	Words      int        `json:"words"`
	Pages      int        `json:"pages"` // Fragment count
	Processed  bool       `json:"processed"`

	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
}

// Touch records one read of the document
func (d *DocumentRecord) Touch(now time.Time) {
	d.LastAccessedAt = &now
	d.AccessCount++
}

// Fragment is one chunk of a document's text, the unit of retrieval
type Fragment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"` // Duplicated for query-time tenant filtering
	Ordinal    int       `json:"ordinal"` // 1-based position within the document
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// ScoredFragment is a fragment returned by a similarity search
type ScoredFragment struct {
	Fragment  *Fragment `json:"fragment"`
	Certainty float64   `json:"certainty"`
}

// SearchFilter scopes a similarity search.
// UserID is always required; DocumentID narrows to one document when set.
type SearchFilter struct {
	UserID     string `json:"user_id"`
	DocumentID string `json:"document_id,omitempty"`
}

// Validate checks the mandatory tenant scope
func (f SearchFilter) Validate() error {
	if f.UserID == "" {
		return ErrInvalidInput
	}
	return nil
}
