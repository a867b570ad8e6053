package mock

import (
	"context"

	"github.com/fwojciec/aptnotice"
)

var _ aptnotice.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of aptnotice.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *aptnotice.ProcessedDocument) error
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *aptnotice.ProcessedDocument) error {
	return w.WriteDocumentFn(ctx, doc)
}

var _ aptnotice.Ingester = (*Ingester)(nil)

// Ingester is a mock implementation of aptnotice.Ingester.
type Ingester struct {
	IngestFn     func(ctx context.Context, path, docID string) (*aptnotice.IngestResult, error)
	IngestHTMLFn func(ctx context.Context, html, docID string) (*aptnotice.IngestResult, error)
}

func (i *Ingester) Ingest(ctx context.Context, path, docID string) (*aptnotice.IngestResult, error) {
	return i.IngestFn(ctx, path, docID)
}

func (i *Ingester) IngestHTML(ctx context.Context, html, docID string) (*aptnotice.IngestResult, error) {
	return i.IngestHTMLFn(ctx, html, docID)
}
