package aptnotice

// Chunk is a retrieval unit cut from a rendered announcement. Chunks are
// immutable once indexed.
type Chunk struct {
	ID       string        `json:"id,omitempty"`
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkMetadata carries the heading chain a chunk fell under and the
// identity of its source document.
type ChunkMetadata struct {
	Header1 string `json:"header_1,omitempty"`
	Header2 string `json:"header_2,omitempty"`
	Header3 string `json:"header_3,omitempty"`

	// DocID is assigned by the caller after chunking and is the join key
	// between ingestion and retrieval.
	DocID string `json:"doc_id"`
}

// Validate returns an error if the chunk cannot be indexed.
func (c *Chunk) Validate() error {
	if c.Metadata.DocID == "" {
		return Errorf(EINVALID, "chunk doc_id required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	return nil
}

// Chunker splits a markdown document into retrieval units.
type Chunker interface {
	// Chunk splits markdown along heading boundaries. Returned chunks carry
	// header metadata only; DocID is left empty.
	Chunk(markdown string) ([]*Chunk, error)
}

// ChunkPolicy controls secondary splitting of header-bounded units.
type ChunkPolicy struct {
	// Split enables character-budget splitting of oversized units.
	Split bool `json:"split"`

	// Size is the maximum unit length in characters.
	Size int `json:"size"`

	// Overlap is the number of characters repeated between consecutive
	// sub-units.
	Overlap int `json:"overlap"`
}

// DefaultChunkPolicy splits units longer than 500 characters with a 50
// character overlap.
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{Split: true, Size: 500, Overlap: 50}
}

// HeaderOnlyPolicy emits header-bounded units verbatim.
func HeaderOnlyPolicy() ChunkPolicy {
	return ChunkPolicy{}
}

// Validate returns an error if the policy is inconsistent.
func (p ChunkPolicy) Validate() error {
	if !p.Split {
		return nil
	}
	if p.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive")
	}
	if p.Overlap < 0 || p.Overlap >= p.Size {
		return Errorf(EINVALID, "chunk overlap must be in [0, %d)", p.Size)
	}
	return nil
}

// AssignDocID tags every chunk with the document identity.
func AssignDocID(chunks []*Chunk, docID string) {
	for _, c := range chunks {
		c.Metadata.DocID = docID
	}
}

// Deduplicator drops chunks whose content repeats earlier chunks.
type Deduplicator interface {
	// Deduplicate returns the retained chunks in order and the number
	// dropped.
	Deduplicate(chunks []*Chunk) ([]*Chunk, int)
}
