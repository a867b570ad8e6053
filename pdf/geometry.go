package pdf

import (
	"cmp"
	"math"
	"slices"
)

// Rect is an axis-aligned box in page space with y growing downward.
type Rect struct {
	X0, Top, X1, Bottom float64
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Top && y <= r.Bottom
}

// Orientation of a ruling edge.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Edge is a horizontal or vertical ruling segment. Horizontal edges have
// Top == Bottom and vertical edges have X0 == X1.
type Edge struct {
	Orientation Orientation
	X0, Top     float64
	X1, Bottom  float64
}

func (e Edge) length() float64 {
	if e.Orientation == Horizontal {
		return e.X1 - e.X0
	}
	return e.Bottom - e.Top
}

// Settings tunes ruling-line table detection. Tolerances are in points.
type Settings struct {
	// SnapTolerance merges parallel edges whose positions differ by no
	// more than this amount into one boundary.
	SnapTolerance float64

	// JoinTolerance merges collinear segments separated by a gap no
	// larger than this amount.
	JoinTolerance float64

	// EdgeMinLength discards shorter edges after joining.
	EdgeMinLength float64

	// IntersectionTolerance is the slack allowed when testing whether an
	// edge touches or covers a coordinate.
	IntersectionTolerance float64
}

// DefaultSettings returns the line-based detection settings used for
// announcement PDFs.
func DefaultSettings() Settings {
	return Settings{
		SnapTolerance:         3,
		JoinTolerance:         3,
		EdgeMinLength:         3,
		IntersectionTolerance: 3,
	}
}

// EdgesFromRects converts drawn rectangles into ruling edges. Each rectangle
// contributes its four sides; thin rectangles used as strokes collapse
// into a single line once snapped, and their short sides are discarded by
// EdgeMinLength.
func EdgesFromRects(rects []Rect) []Edge {
	edges := make([]Edge, 0, len(rects)*4)
	for _, r := range rects {
		edges = append(edges,
			Edge{Orientation: Horizontal, X0: r.X0, X1: r.X1, Top: r.Top, Bottom: r.Top},
			Edge{Orientation: Horizontal, X0: r.X0, X1: r.X1, Top: r.Bottom, Bottom: r.Bottom},
			Edge{Orientation: Vertical, X0: r.X0, X1: r.X0, Top: r.Top, Bottom: r.Bottom},
			Edge{Orientation: Vertical, X0: r.X1, X1: r.X1, Top: r.Top, Bottom: r.Bottom},
		)
	}
	return edges
}

// axisTolerance is the largest deviation from horizontal or vertical, in
// points, for a drawn segment to count as a ruling line.
const axisTolerance = 1.0

// SegmentEdge converts a drawn line from (x0, y0) to (x1, y1) in page
// space into a ruling edge. Diagonal and degenerate segments are not
// rulings and report false.
func SegmentEdge(x0, y0, x1, y1 float64) (Edge, bool) {
	dx, dy := math.Abs(x1-x0), math.Abs(y1-y0)
	switch {
	case dx <= axisTolerance && dy <= axisTolerance:
		return Edge{}, false
	case dy <= axisTolerance:
		y := (y0 + y1) / 2
		return Edge{Orientation: Horizontal, X0: math.Min(x0, x1), X1: math.Max(x0, x1), Top: y, Bottom: y}, true
	case dx <= axisTolerance:
		x := (x0 + x1) / 2
		return Edge{Orientation: Vertical, X0: x, X1: x, Top: math.Min(y0, y1), Bottom: math.Max(y0, y1)}, true
	}
	return Edge{}, false
}

// SnapEdges moves parallel edges whose positions lie within tol of each
// other onto their cluster's mean position.
func SnapEdges(edges []Edge, tol float64) []Edge {
	var h, v []Edge
	for _, e := range edges {
		if e.Orientation == Horizontal {
			h = append(h, e)
		} else {
			v = append(v, e)
		}
	}

	snap(h, tol, func(e *Edge) *float64 { return &e.Top }, func(e *Edge) { e.Bottom = e.Top })
	snap(v, tol, func(e *Edge) *float64 { return &e.X0 }, func(e *Edge) { e.X1 = e.X0 })

	return append(h, v...)
}

// snap clusters edges by the coordinate pos points at. Consecutive sorted
// values no further than tol apart share a cluster.
func snap(edges []Edge, tol float64, pos func(*Edge) *float64, sync func(*Edge)) {
	if len(edges) == 0 {
		return
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		return cmp.Compare(*pos(&a), *pos(&b))
	})

	start := 0
	for i := 1; i <= len(edges); i++ {
		if i < len(edges) && *pos(&edges[i])-*pos(&edges[i-1]) <= tol {
			continue
		}
		var sum float64
		for j := start; j < i; j++ {
			sum += *pos(&edges[j])
		}
		mean := sum / float64(i-start)
		for j := start; j < i; j++ {
			*pos(&edges[j]) = mean
			sync(&edges[j])
		}
		start = i
	}
}

// JoinEdges merges collinear edges that overlap or are separated by at
// most tol.
func JoinEdges(edges []Edge, tol float64) []Edge {
	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, func(a, b Edge) int {
		if c := cmp.Compare(a.Orientation, b.Orientation); c != 0 {
			return c
		}
		if a.Orientation == Horizontal {
			if c := cmp.Compare(a.Top, b.Top); c != 0 {
				return c
			}
			return cmp.Compare(a.X0, b.X0)
		}
		if c := cmp.Compare(a.X0, b.X0); c != 0 {
			return c
		}
		return cmp.Compare(a.Top, b.Top)
	})

	var joined []Edge
	for _, e := range sorted {
		if n := len(joined); n > 0 {
			last := &joined[n-1]
			if last.Orientation == e.Orientation {
				if e.Orientation == Horizontal && last.Top == e.Top && e.X0 <= last.X1+tol {
					last.X1 = math.Max(last.X1, e.X1)
					continue
				}
				if e.Orientation == Vertical && last.X0 == e.X0 && e.Top <= last.Bottom+tol {
					last.Bottom = math.Max(last.Bottom, e.Bottom)
					continue
				}
			}
		}
		joined = append(joined, e)
	}
	return joined
}

// Table is a ruled table region described by its lattice of boundaries.
type Table struct {
	Bbox Rect

	// Xs and Ys are the sorted column and row boundaries.
	Xs, Ys []float64

	edges []Edge
	tol   float64
}

// FindTables detects ruled tables from the ruling edges of a page.
// Tables are returned sorted by their top coordinate.
func FindTables(edges []Edge, s Settings) []*Table {
	edges = SnapEdges(slices.Clone(edges), s.SnapTolerance)
	edges = JoinEdges(edges, s.JoinTolerance)
	edges = slices.DeleteFunc(edges, func(e Edge) bool {
		return e.length() < s.EdgeMinLength
	})

	var tables []*Table
	for _, group := range connectedEdges(edges, s.IntersectionTolerance) {
		if t := newTable(group, s.IntersectionTolerance); t != nil {
			tables = append(tables, t)
		}
	}
	slices.SortStableFunc(tables, func(a, b *Table) int {
		return cmp.Compare(a.Bbox.Top, b.Bbox.Top)
	})
	return tables
}

// connectedEdges groups edges that touch or cross each other.
func connectedEdges(edges []Edge, tol float64) [][]Edge {
	parent := make([]int, len(edges))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := range edges {
		for j := i + 1; j < len(edges); j++ {
			if touches(edges[i], edges[j], tol) {
				parent[find(i)] = find(j)
			}
		}
	}

	index := make(map[int]int)
	var groups [][]Edge
	for i, e := range edges {
		root := find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], e)
	}
	return groups
}

func touches(a, b Edge, tol float64) bool {
	return a.X0 <= b.X1+tol && b.X0 <= a.X1+tol &&
		a.Top <= b.Bottom+tol && b.Top <= a.Bottom+tol
}

func newTable(edges []Edge, tol float64) *Table {
	var xs, ys []float64
	bbox := Rect{X0: math.Inf(1), Top: math.Inf(1), X1: math.Inf(-1), Bottom: math.Inf(-1)}
	for _, e := range edges {
		if e.Orientation == Vertical {
			xs = append(xs, e.X0)
		} else {
			ys = append(ys, e.Top)
		}
		bbox.X0 = math.Min(bbox.X0, e.X0)
		bbox.X1 = math.Max(bbox.X1, e.X1)
		bbox.Top = math.Min(bbox.Top, e.Top)
		bbox.Bottom = math.Max(bbox.Bottom, e.Bottom)
	}
	xs = uniqueSorted(xs)
	ys = uniqueSorted(ys)
	if len(xs) < 2 || len(ys) < 2 {
		return nil
	}
	return &Table{Bbox: bbox, Xs: xs, Ys: ys, edges: edges, tol: tol}
}

func uniqueSorted(v []float64) []float64 {
	slices.Sort(v)
	return slices.Compact(v)
}

// Rows returns the number of lattice rows.
func (t *Table) Rows() int { return len(t.Ys) - 1 }

// Cols returns the number of lattice columns.
func (t *Table) Cols() int { return len(t.Xs) - 1 }

// hasVerticalSeparator reports whether a vertical edge at column boundary
// col covers the middle of row band row.
func (t *Table) hasVerticalSeparator(row, col int) bool {
	x := t.Xs[col]
	mid := (t.Ys[row] + t.Ys[row+1]) / 2
	for _, e := range t.edges {
		if e.Orientation == Vertical && math.Abs(e.X0-x) <= t.tol &&
			e.Top-t.tol <= mid && mid <= e.Bottom+t.tol {
			return true
		}
	}
	return false
}

// hasHorizontalSeparator reports whether a horizontal edge at row boundary
// row covers the middle of column band col.
func (t *Table) hasHorizontalSeparator(row, col int) bool {
	y := t.Ys[row]
	mid := (t.Xs[col] + t.Xs[col+1]) / 2
	for _, e := range t.edges {
		if e.Orientation == Horizontal && math.Abs(e.Top-y) <= t.tol &&
			e.X0-t.tol <= mid && mid <= e.X1+t.tol {
			return true
		}
	}
	return false
}

// Cell is a lattice region merged from one or more lattice cells.
type Cell struct {
	Row, Col         int
	RowSpan, ColSpan int
	Bbox             Rect
}

// Cells resolves merged regions in row-major order. A lattice cell with no
// separator on its right extends the span rightward; a cell with no
// separator below extends it downward. Each lattice coordinate belongs to
// exactly one Cell.
func (t *Table) Cells() []Cell {
	rows, cols := t.Rows(), t.Cols()
	covered := make([][]bool, rows)
	for i := range covered {
		covered[i] = make([]bool, cols)
	}

	var cells []Cell
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if covered[i][j] {
				continue
			}
			k := j + 1
			for k < cols && !covered[i][k] && !t.hasVerticalSeparator(i, k) {
				k++
			}
			m := i + 1
			for m < rows && !covered[m][j] && !t.hasHorizontalSeparator(m, j) {
				m++
			}
			for r := i; r < m; r++ {
				for c := j; c < k; c++ {
					covered[r][c] = true
				}
			}
			cells = append(cells, Cell{
				Row: i, Col: j,
				RowSpan: m - i, ColSpan: k - j,
				Bbox: Rect{X0: t.Xs[j], Top: t.Ys[i], X1: t.Xs[k], Bottom: t.Ys[m]},
			})
		}
	}
	return cells
}
