package mock

import (
	"context"

	"github.com/fwojciec/aptnotice"
)

var _ aptnotice.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of aptnotice.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}

var _ aptnotice.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of aptnotice.VectorStore.
type VectorStore struct {
	HasDocumentFn func(ctx context.Context, docID string) (bool, error)
	PutFn         func(ctx context.Context, entries []*aptnotice.IndexEntry) error
	QueryFn       func(ctx context.Context, vec []float32, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error)
	CountFn       func(ctx context.Context, filter aptnotice.SearchFilter) (int, error)
	ResetFn       func(ctx context.Context) error
}

func (s *VectorStore) HasDocument(ctx context.Context, docID string) (bool, error) {
	return s.HasDocumentFn(ctx, docID)
}

func (s *VectorStore) Put(ctx context.Context, entries []*aptnotice.IndexEntry) error {
	return s.PutFn(ctx, entries)
}

func (s *VectorStore) Query(ctx context.Context, vec []float32, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error) {
	return s.QueryFn(ctx, vec, k, filter)
}

func (s *VectorStore) Count(ctx context.Context, filter aptnotice.SearchFilter) (int, error) {
	return s.CountFn(ctx, filter)
}

func (s *VectorStore) Reset(ctx context.Context) error {
	return s.ResetFn(ctx)
}

var _ aptnotice.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a mock implementation of aptnotice.VectorIndex.
type VectorIndex struct {
	AddFn    func(ctx context.Context, chunks []*aptnotice.Chunk) (int, error)
	SearchFn func(ctx context.Context, query string, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error)
	ClearFn  func(ctx context.Context) error
}

func (i *VectorIndex) Add(ctx context.Context, chunks []*aptnotice.Chunk) (int, error) {
	return i.AddFn(ctx, chunks)
}

func (i *VectorIndex) Search(ctx context.Context, query string, k int, filter aptnotice.SearchFilter) ([]aptnotice.SearchResult, error) {
	return i.SearchFn(ctx, query, k, filter)
}

func (i *VectorIndex) Clear(ctx context.Context) error {
	return i.ClearFn(ctx)
}
