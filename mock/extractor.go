package mock

import (
	"context"
	"iter"

	"github.com/fwojciec/aptnotice"
)

var _ aptnotice.LayoutExtractor = (*LayoutExtractor)(nil)

// LayoutExtractor is a mock implementation of aptnotice.LayoutExtractor.
type LayoutExtractor struct {
	ExtractFn func(ctx context.Context, path string) iter.Seq2[*aptnotice.ContentBlock, error]
}

func (e *LayoutExtractor) Extract(ctx context.Context, path string) iter.Seq2[*aptnotice.ContentBlock, error] {
	return e.ExtractFn(ctx, path)
}

// Blocks returns a sequence that yields blocks in order.
func Blocks(blocks ...*aptnotice.ContentBlock) iter.Seq2[*aptnotice.ContentBlock, error] {
	return func(yield func(*aptnotice.ContentBlock, error) bool) {
		for _, b := range blocks {
			if !yield(b, nil) {
				return
			}
		}
	}
}

var _ aptnotice.PDFInspector = (*PDFInspector)(nil)

// PDFInspector is a mock implementation of aptnotice.PDFInspector.
type PDFInspector struct {
	InspectFn func(ctx context.Context, path string) (*aptnotice.PDFInfo, error)
}

func (i *PDFInspector) Inspect(ctx context.Context, path string) (*aptnotice.PDFInfo, error) {
	return i.InspectFn(ctx, path)
}
