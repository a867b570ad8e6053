package aptnotice

import (
	"context"
	"iter"
)

// BlockKind identifies the payload carried by a ContentBlock.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockTable
)

// String returns the lowercase name of the kind.
func (k BlockKind) String() string {
	switch k {
	case BlockText:
		return "text"
	case BlockTable:
		return "table"
	default:
		return "unknown"
	}
}

// RawTable is a table grid as detected on the page. A nil cell marks a
// coordinate covered by a merged cell whose value lives in the span's
// top-left cell.
type RawTable [][]*string

// ContentBlock is a typed region of a page. Within one page, blocks are
// produced in increasing YStart order and table blocks never overlap.
type ContentBlock struct {
	Kind BlockKind `json:"kind"`

	// Page is the 1-based page number.
	Page int `json:"page"`

	// Vertical extent in points measured from the top of the page.
	YStart float64 `json:"yStart"`
	YEnd   float64 `json:"yEnd"`

	// Text holds the payload of a BlockText block.
	Text string `json:"text,omitempty"`

	// Table holds the payload of a BlockTable block.
	Table RawTable `json:"table,omitempty"`
}

// LayoutExtractor splits a PDF into an ordered sequence of content blocks.
type LayoutExtractor interface {
	// Extract returns a lazy sequence of blocks for the PDF at path. Each
	// iteration reads the file from scratch. A non-nil error ends the
	// sequence.
	Extract(ctx context.Context, path string) iter.Seq2[*ContentBlock, error]
}

// CollectBlocks drains a block sequence into a slice.
func CollectBlocks(seq iter.Seq2[*ContentBlock, error]) ([]*ContentBlock, error) {
	var blocks []*ContentBlock
	for block, err := range seq {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// PDFInfo describes a PDF that passed preflight inspection.
type PDFInfo struct {
	Path      string `json:"path"`
	PageCount int    `json:"pageCount"`
}

// PDFInspector checks that a file is a readable PDF before extraction.
type PDFInspector interface {
	// Inspect returns EINVALID if the file is not a valid PDF.
	Inspect(ctx context.Context, path string) (*PDFInfo, error)
}
