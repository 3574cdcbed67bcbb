package postprocessors

import (
	"strings"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.Chunker = (*WordChunker)(nil)

// WordChunker splits text into consecutive, non-overlapping word windows.
// Words are separated by any Unicode whitespace and rejoined with single spaces.
type WordChunker struct {
	defaultWords int
}

// NewWordChunker creates a chunker that falls back to defaultWords when
// Chunk is called with a non-positive window.
func NewWordChunker(defaultWords int) *WordChunker {
	if defaultWords <= 0 {
		defaultWords = domain.DefaultWindowWords
	}
	return &WordChunker{defaultWords: defaultWords}
}

// Chunk splits text into windows of at most maxWords words.
// The last window may be shorter. Empty text yields nil.
func (c *WordChunker) Chunk(text string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = c.defaultWords
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(words)+maxWords-1)/maxWords)
	for start := 0; start < len(words); start += maxWords {
		end := min(start+maxWords, len(words))
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

// WordCount returns the number of whitespace-separated words in text
func WordCount(text string) int {
	return len(strings.Fields(text))
}
