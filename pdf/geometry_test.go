package pdf_test

import (
	"testing"

	"github.com/fwojciec/aptnotice/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hline and vline draw 0.5pt strokes the way table borders are usually painted.
func hline(x0, x1, y float64) pdf.Rect { return pdf.Rect{X0: x0, X1: x1, Top: y, Bottom: y + 0.5} }
func vline(x, y0, y1 float64) pdf.Rect { return pdf.Rect{X0: x, X1: x + 0.5, Top: y0, Bottom: y1} }

// grid2x2 is a 2x2 ruled table spanning x 100-300 and y 100-160.
func grid2x2() []pdf.Rect {
	return []pdf.Rect{
		hline(100, 300, 100), hline(100, 300, 130), hline(100, 300, 160),
		vline(100, 100, 160), vline(200, 100, 160), vline(300, 100, 160),
	}
}

func TestSnapEdges(t *testing.T) {
	t.Parallel()

	edges := []pdf.Edge{
		{Orientation: pdf.Horizontal, X0: 0, X1: 10, Top: 100, Bottom: 100},
		{Orientation: pdf.Horizontal, X0: 0, X1: 10, Top: 102, Bottom: 102},
		{Orientation: pdf.Horizontal, X0: 0, X1: 10, Top: 120, Bottom: 120},
		{Orientation: pdf.Vertical, X0: 50, X1: 50, Top: 0, Bottom: 10},
		{Orientation: pdf.Vertical, X0: 51, X1: 51, Top: 0, Bottom: 10},
	}

	snapped := pdf.SnapEdges(edges, 3)

	require.Len(t, snapped, 5)
	assert.InDelta(t, 101, snapped[0].Top, 0.001)
	assert.InDelta(t, 101, snapped[1].Top, 0.001)
	assert.InDelta(t, 101, snapped[1].Bottom, 0.001)
	assert.InDelta(t, 120, snapped[2].Top, 0.001)
	assert.InDelta(t, 50.5, snapped[3].X0, 0.001)
	assert.InDelta(t, 50.5, snapped[4].X1, 0.001)
}

func TestSegmentEdge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		x0, y0, x1, y1 float64
		want           pdf.Edge
		ok             bool
	}{
		{
			name: "horizontal drawn right to left",
			x0:   300, y0: 100, x1: 100, y1: 100.4,
			want: pdf.Edge{Orientation: pdf.Horizontal, X0: 100, X1: 300, Top: 100.2, Bottom: 100.2},
			ok:   true,
		},
		{
			name: "vertical drawn bottom to top",
			x0:   50, y0: 160, x1: 50, y1: 100,
			want: pdf.Edge{Orientation: pdf.Vertical, X0: 50, X1: 50, Top: 100, Bottom: 160},
			ok:   true,
		},
		{name: "diagonal", x0: 0, y0: 0, x1: 100, y1: 100},
		{name: "point", x0: 10, y0: 10, x1: 10.5, y1: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := pdf.SegmentEdge(tt.x0, tt.y0, tt.x1, tt.y1)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want.X0, got.X0, 1e-9)
				assert.InDelta(t, tt.want.X1, got.X1, 1e-9)
				assert.InDelta(t, tt.want.Top, got.Top, 1e-9)
				assert.InDelta(t, tt.want.Bottom, got.Bottom, 1e-9)
				assert.Equal(t, tt.want.Orientation, got.Orientation)
			}
		})
	}
}

func TestJoinEdges(t *testing.T) {
	t.Parallel()

	edges := []pdf.Edge{
		{Orientation: pdf.Horizontal, X0: 0, X1: 50, Top: 10, Bottom: 10},
		{Orientation: pdf.Horizontal, X0: 52, X1: 100, Top: 10, Bottom: 10},
		{Orientation: pdf.Horizontal, X0: 200, X1: 250, Top: 10, Bottom: 10},
		{Orientation: pdf.Vertical, X0: 5, X1: 5, Top: 0, Bottom: 20},
		{Orientation: pdf.Vertical, X0: 5, X1: 5, Top: 10, Bottom: 40},
	}

	joined := pdf.JoinEdges(edges, 3)

	require.Len(t, joined, 3)
	assert.Equal(t, pdf.Edge{Orientation: pdf.Horizontal, X0: 0, X1: 100, Top: 10, Bottom: 10}, joined[0])
	assert.Equal(t, pdf.Edge{Orientation: pdf.Horizontal, X0: 200, X1: 250, Top: 10, Bottom: 10}, joined[1])
	assert.Equal(t, pdf.Edge{Orientation: pdf.Vertical, X0: 5, X1: 5, Top: 0, Bottom: 40}, joined[2])
}

func TestFindTables(t *testing.T) {
	t.Parallel()

	t.Run("detects a ruled grid", func(t *testing.T) {
		t.Parallel()

		tables := pdf.FindTables(pdf.EdgesFromRects(grid2x2()), pdf.DefaultSettings())

		require.Len(t, tables, 1)
		assert.Equal(t, 2, tables[0].Rows())
		assert.Equal(t, 2, tables[0].Cols())
		assert.InDelta(t, 100, tables[0].Bbox.Top, 0.5)
		assert.InDelta(t, 160, tables[0].Bbox.Bottom, 0.5)
	})

	t.Run("separates disjoint tables and sorts them by top", func(t *testing.T) {
		t.Parallel()

		var rects []pdf.Rect
		for _, r := range grid2x2() {
			r.Top += 400
			r.Bottom += 400
			rects = append(rects, r)
		}
		rects = append(rects, grid2x2()...)

		tables := pdf.FindTables(pdf.EdgesFromRects(rects), pdf.DefaultSettings())

		require.Len(t, tables, 2)
		assert.Less(t, tables[0].Bbox.Top, tables[1].Bbox.Top)
	})

	t.Run("detects a grid drawn as line segments", func(t *testing.T) {
		t.Parallel()

		var edges []pdf.Edge
		for _, y := range []float64{100, 130, 160} {
			e, ok := pdf.SegmentEdge(100, y, 300, y)
			require.True(t, ok)
			edges = append(edges, e)
		}
		for _, x := range []float64{100, 200, 300} {
			e, ok := pdf.SegmentEdge(x, 160, x, 100)
			require.True(t, ok)
			edges = append(edges, e)
		}

		tables := pdf.FindTables(edges, pdf.DefaultSettings())

		require.Len(t, tables, 1)
		assert.Equal(t, []float64{100, 200, 300}, tables[0].Xs)
		assert.Equal(t, []float64{100, 130, 160}, tables[0].Ys)
	})

	t.Run("ignores lone rules", func(t *testing.T) {
		t.Parallel()

		tables := pdf.FindTables(pdf.EdgesFromRects([]pdf.Rect{hline(50, 500, 300)}), pdf.DefaultSettings())

		assert.Empty(t, tables)
	})

	t.Run("snaps jittered borders into one boundary", func(t *testing.T) {
		t.Parallel()

		rects := grid2x2()
		rects = append(rects, hline(100, 300, 131.5))

		tables := pdf.FindTables(pdf.EdgesFromRects(rects), pdf.DefaultSettings())

		require.Len(t, tables, 1)
		assert.Equal(t, 2, tables[0].Rows())
	})
}

func TestTable_Cells(t *testing.T) {
	t.Parallel()

	t.Run("resolves a column span", func(t *testing.T) {
		t.Parallel()

		// The middle vertical rule stops at y=130, so the top row is one
		// merged cell.
		rects := []pdf.Rect{
			hline(100, 300, 100), hline(100, 300, 130), hline(100, 300, 160),
			vline(100, 100, 160), vline(200, 130, 160), vline(300, 100, 160),
		}

		tables := pdf.FindTables(pdf.EdgesFromRects(rects), pdf.DefaultSettings())
		require.Len(t, tables, 1)
		cells := tables[0].Cells()

		require.Len(t, cells, 3)
		assert.Equal(t, 0, cells[0].Row)
		assert.Equal(t, 2, cells[0].ColSpan)
		assert.Equal(t, 1, cells[0].RowSpan)
	})

	t.Run("resolves a row span", func(t *testing.T) {
		t.Parallel()

		// The middle horizontal rule only covers the right column.
		rects := []pdf.Rect{
			hline(100, 300, 100), hline(200, 300, 130), hline(100, 300, 160),
			vline(100, 100, 160), vline(200, 100, 160), vline(300, 100, 160),
		}

		tables := pdf.FindTables(pdf.EdgesFromRects(rects), pdf.DefaultSettings())
		require.Len(t, tables, 1)
		cells := tables[0].Cells()

		require.Len(t, cells, 3)
		assert.Equal(t, pdf.Cell{Row: 0, Col: 0, RowSpan: 2, ColSpan: 1, Bbox: cells[0].Bbox}, cells[0])
		assert.Equal(t, 1, cells[2].Row)
		assert.Equal(t, 1, cells[2].Col)
	})
}

func TestTable_Extract(t *testing.T) {
	t.Parallel()

	rects := []pdf.Rect{
		hline(100, 300, 100), hline(100, 300, 130), hline(100, 300, 160),
		vline(100, 100, 160), vline(200, 130, 160), vline(300, 100, 160),
	}
	tables := pdf.FindTables(pdf.EdgesFromRects(rects), pdf.DefaultSettings())
	require.Len(t, tables, 1)

	glyphs := []pdf.Glyph{
		{Text: "공급세대", X0: 170, X1: 210, Baseline: 120, Size: 10},
		{Text: "59A", X0: 110, X1: 130, Baseline: 150, Size: 10},
		{Text: "120", X0: 210, X1: 230, Baseline: 150, Size: 10},
	}

	grid := tables[0].Extract(glyphs)

	require.Len(t, grid, 2)
	require.NotNil(t, grid[0][0])
	assert.Equal(t, "공급세대", *grid[0][0])
	assert.Nil(t, grid[0][1])
	assert.Equal(t, "59A", *grid[1][0])
	assert.Equal(t, "120", *grid[1][1])
}
