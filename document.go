package aptnotice

import (
	"context"
	"time"
)

// ProcessedDocument is an announcement rendered to markdown, before chunking.
type ProcessedDocument struct {
	DocID string `json:"docId"`

	// Source is the path or label the document was read from.
	Source string `json:"source"`

	// Parts holds one rendered string per retained block.
	Parts    []string  `json:"parts"`
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`

	ProcessedAt time.Time `json:"processedAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *ProcessedDocument) Validate() error {
	if d.DocID == "" {
		return Errorf(EINVALID, "document doc_id required")
	}
	return nil
}

// DocumentWriter persists processed documents for inspection.
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc *ProcessedDocument) error
}

// IngestResult summarizes one ingestion.
type IngestResult struct {
	DocID  string `json:"docId"`
	Pages  int    `json:"pages"`
	Blocks int    `json:"blocks"`
	Parts  int    `json:"parts"`
	Chunks int    `json:"chunks"`

	// Added is the number of index entries written; zero when the
	// document was already indexed.
	Added   int  `json:"added"`
	Skipped bool `json:"skipped"`

	// Duplicates is the number of chunks dropped as repeated content.
	Duplicates int `json:"duplicates,omitempty"`

	Tokens   int       `json:"tokens,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

// Ingester runs the write path from a source document to the index.
type Ingester interface {
	// Ingest indexes the PDF at path under docID.
	Ingest(ctx context.Context, path, docID string) (*IngestResult, error)

	// IngestHTML indexes a digitized HTML rendition under docID.
	IngestHTML(ctx context.Context, html, docID string) (*IngestResult, error)
}
