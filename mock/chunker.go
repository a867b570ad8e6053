package mock

import "github.com/fwojciec/aptnotice"

var _ aptnotice.Chunker = (*Chunker)(nil)

// Chunker is a mock implementation of aptnotice.Chunker.
type Chunker struct {
	ChunkFn func(markdown string) ([]*aptnotice.Chunk, error)
}

func (c *Chunker) Chunk(markdown string) ([]*aptnotice.Chunk, error) {
	return c.ChunkFn(markdown)
}

var _ aptnotice.Deduplicator = (*Deduplicator)(nil)

// Deduplicator is a mock implementation of aptnotice.Deduplicator.
type Deduplicator struct {
	DeduplicateFn func(chunks []*aptnotice.Chunk) ([]*aptnotice.Chunk, int)
}

func (d *Deduplicator) Deduplicate(chunks []*aptnotice.Chunk) ([]*aptnotice.Chunk, int) {
	return d.DeduplicateFn(chunks)
}
