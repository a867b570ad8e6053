package aptnotice

import (
	"context"
	"regexp"
	"strings"
)

// IndexEntry is a chunk persisted with its embedding under a stable id.
type IndexEntry struct {
	ID        string    `json:"id"`
	Chunk     *Chunk    `json:"chunk"`
	Embedding []float32 `json:"embedding"`
}

// SearchFilter scopes a search. A nil DocID searches the whole index.
type SearchFilter struct {
	DocID *string `json:"docId,omitempty"`
}

// SearchResult is a chunk and its similarity to the query, higher is closer.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}

// Embedder turns texts into fixed-length vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorStore persists index entries in a similarity-searchable collection.
type VectorStore interface {
	// HasDocument reports whether any entry carries docID.
	HasDocument(ctx context.Context, docID string) (bool, error)

	// Put writes entries. Vectors that do not match the collection's
	// width fail with an error IsDimensionMismatch recognizes.
	Put(ctx context.Context, entries []*IndexEntry) error

	// Query returns up to k entries nearest to vec, best first.
	Query(ctx context.Context, vec []float32, k int, filter SearchFilter) ([]SearchResult, error)

	// Count returns the number of entries matching filter.
	Count(ctx context.Context, filter SearchFilter) (int, error)

	// Reset drops the collection and recreates it empty.
	Reset(ctx context.Context) error
}

// VectorIndex embeds, stores and searches chunks.
type VectorIndex interface {
	// Add indexes chunks of a single document and returns the number of
	// entries written. Adding a document that is already indexed writes
	// nothing.
	Add(ctx context.Context, chunks []*Chunk) (int, error)

	// Search returns up to k chunks similar to query. An empty result is
	// not an error.
	Search(ctx context.Context, query string, k int, filter SearchFilter) ([]SearchResult, error)

	// Clear removes every entry. Irreversible.
	Clear(ctx context.Context) error
}

// storeDimensionRe matches the dimension errors the vector stores raise on
// write: the collection form "expecting embedding with dimension of N" and
// pgvector's "expected N dimensions".
var storeDimensionRe = regexp.MustCompile(`(?i)expecting embedding with dimension|expected \d+ dimensions`)

// IsDimensionMismatch reports whether err is a store's refusal of
// embeddings whose width differs from the collection's. Provider errors
// that merely mention dimensions do not match.
func IsDimensionMismatch(err error) bool {
	if err == nil {
		return false
	}
	return storeDimensionRe.MatchString(err.Error())
}

// IsQuotaExceeded reports whether err is a provider rate-limit or quota error.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(strings.ToLower(msg), "quota")
}

// StringPtr returns a pointer to s, for filter fields.
func StringPtr(s string) *string {
	return &s
}
