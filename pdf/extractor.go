// Package pdf extracts layout blocks from PDF files using the pure-Go
// reader github.com/ledongthuc/pdf. Tables are detected from ruling lines.
package pdf

import (
	"context"
	"fmt"
	"iter"
	"math"
	"slices"

	"github.com/fwojciec/aptnotice"
	pdflib "github.com/ledongthuc/pdf"
)

// Ensure Extractor implements aptnotice.LayoutExtractor at compile time.
var _ aptnotice.LayoutExtractor = (*Extractor)(nil)

// A4 portrait, used when a page declares no media box.
const (
	defaultPageWidth  = 595
	defaultPageHeight = 842
)

// Extractor implements aptnotice.LayoutExtractor.
type Extractor struct {
	Settings Settings

	// OnPageError is called when a page's content cannot be decoded. The
	// page contributes no blocks.
	OnPageError func(page int, err error)
}

// NewExtractor creates an Extractor with DefaultSettings.
func NewExtractor() *Extractor {
	return &Extractor{Settings: DefaultSettings()}
}

// Extract returns the blocks of the PDF at path in page order and, within
// a page, top to bottom.
func (e *Extractor) Extract(ctx context.Context, path string) iter.Seq2[*aptnotice.ContentBlock, error] {
	return func(yield func(*aptnotice.ContentBlock, error) bool) {
		f, r, err := pdflib.Open(path)
		if err != nil {
			yield(nil, fmt.Errorf("failed to open pdf: %w", err))
			return
		}
		defer f.Close()

		for i := 1; i <= r.NumPage(); i++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			p := r.Page(i)
			if p.V.IsNull() {
				continue
			}

			page, err := readPage(p)
			if err != nil {
				if e.OnPageError != nil {
					e.OnPageError(i, err)
				}
				continue
			}

			for _, block := range e.Layout(page, i) {
				if !yield(block, nil) {
					return
				}
			}
		}
	}
}

// Page is the decoded geometry of one PDF page in page space with y
// growing downward.
type Page struct {
	Width, Height float64
	Glyphs        []Glyph

	// Edges are the horizontal and vertical ruling lines drawn on the
	// page, whether stroked as line paths or drawn as rectangles.
	Edges []Edge
}

// readPage decodes a page's content stream. The reader panics on malformed
// streams, which is reported as an error.
func readPage(p pdflib.Page) (pg *Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to decode page content: %v", r)
		}
	}()

	box := mediaBox(p.V)
	pg = &Page{Width: box.X1 - box.X0, Height: box.Bottom - box.Top}

	// PDF space grows upward from the bottom of the media box.
	flip := func(y float64) float64 { return box.Bottom - y }

	content := p.Content()
	for _, t := range content.Text {
		// The reader terminates each TJ array with a synthetic newline.
		if t.S == "" || t.S == "\n" {
			continue
		}
		w := t.W
		if w <= 0 {
			w = estimateWidth(t.S, t.FontSize)
		}
		pg.Glyphs = append(pg.Glyphs, Glyph{
			Text:     t.S,
			X0:       t.X - box.X0,
			X1:       t.X + w - box.X0,
			Baseline: flip(t.Y),
			Size:     t.FontSize,
		})
	}

	if strm := p.V.Key("Contents"); !strm.IsNull() {
		for _, seg := range paintedSegments(strm) {
			e, ok := SegmentEdge(seg.a.x-box.X0, flip(seg.a.y), seg.b.x-box.X0, flip(seg.b.y))
			if ok {
				pg.Edges = append(pg.Edges, e)
			}
		}
	}
	return pg, nil
}

// mediaBox returns the page's media box as {llx, lly, urx, ury} mapped
// onto Rect{X0, Top, X1, Bottom}. The box is inherited through the page
// tree when the page itself does not declare one.
func mediaBox(v pdflib.Value) Rect {
	for n := v; !n.IsNull(); n = n.Key("Parent") {
		box := n.Key("MediaBox")
		if box.Len() != 4 {
			continue
		}
		llx, lly := box.Index(0).Float64(), box.Index(1).Float64()
		urx, ury := box.Index(2).Float64(), box.Index(3).Float64()
		if urx <= llx || ury <= lly {
			break
		}
		return Rect{X0: llx, Top: lly, X1: urx, Bottom: ury}
	}
	return Rect{X1: defaultPageWidth, Bottom: defaultPageHeight}
}

// Layout splits a page into text strips and tables. A cursor walks down
// the page; each table is preceded by the text between the cursor and the
// table top, and the text below the last table closes the page.
func (e *Extractor) Layout(pg *Page, pageNum int) []*aptnotice.ContentBlock {
	tables := FindTables(pg.Edges, e.Settings)

	// Glyphs inside a table belong to its cells only.
	var free []Glyph
	for _, g := range pg.Glyphs {
		x, y := g.center()
		if !slices.ContainsFunc(tables, func(t *Table) bool { return t.Bbox.Contains(x, y) }) {
			free = append(free, g)
		}
	}

	var blocks []*aptnotice.ContentBlock
	cursor := 0.0
	for _, t := range tables {
		if t.Bbox.Top > cursor {
			if block := textStrip(free, pageNum, cursor, t.Bbox.Top); block != nil {
				blocks = append(blocks, block)
			}
		}
		blocks = append(blocks, &aptnotice.ContentBlock{
			Kind:   aptnotice.BlockTable,
			Page:   pageNum,
			YStart: t.Bbox.Top,
			YEnd:   t.Bbox.Bottom,
			Table:  t.Extract(pg.Glyphs),
		})
		cursor = math.Max(cursor, t.Bbox.Bottom)
	}
	if block := textStrip(free, pageNum, cursor, pg.Height); block != nil {
		blocks = append(blocks, block)
	}
	return blocks
}

// textStrip returns the text whose vertical center lies in [top, bottom)
// across the full page width, or nil when the strip is degenerate or
// empty.
func textStrip(glyphs []Glyph, pageNum int, top, bottom float64) *aptnotice.ContentBlock {
	if bottom <= top {
		return nil
	}
	var in []Glyph
	for _, g := range glyphs {
		if _, y := g.center(); y >= top && y < bottom {
			in = append(in, g)
		}
	}
	text := AssembleText(in)
	if text == "" {
		return nil
	}
	return &aptnotice.ContentBlock{
		Kind:   aptnotice.BlockText,
		Page:   pageNum,
		YStart: top,
		YEnd:   bottom,
		Text:   text,
	}
}

// Extract fills the table's raw grid. Each merged region's text is placed
// in its top-left lattice cell; the other cells it covers are nil.
func (t *Table) Extract(glyphs []Glyph) aptnotice.RawTable {
	grid := make(aptnotice.RawTable, t.Rows())
	for i := range grid {
		grid[i] = make([]*string, t.Cols())
	}

	for _, cell := range t.Cells() {
		var in []Glyph
		for _, g := range glyphs {
			if x, y := g.center(); cell.Bbox.Contains(x, y) {
				in = append(in, g)
			}
		}
		text := AssembleText(in)
		grid[cell.Row][cell.Col] = &text
	}
	return grid
}
