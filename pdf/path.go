package pdf

import (
	pdflib "github.com/ledongthuc/pdf"
)

// matrix is a PDF transformation [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f).
type matrix [6]float64

var identity = matrix{1, 0, 0, 1, 0, 0}

// concat returns the transformation that applies m and then n.
func (m matrix) concat(n matrix) matrix {
	return matrix{
		m[0]*n[0] + m[1]*n[2],
		m[0]*n[1] + m[1]*n[3],
		m[2]*n[0] + m[3]*n[2],
		m[2]*n[1] + m[3]*n[3],
		m[4]*n[0] + m[5]*n[2] + n[4],
		m[4]*n[1] + m[5]*n[3] + n[5],
	}
}

func (m matrix) point(x, y float64) point {
	return point{m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]}
}

// point is a position in PDF default user space (y grows upward).
type point struct{ x, y float64 }

// segment is a straight piece of a painted path.
type segment struct{ a, b point }

// paintedSegments walks a content stream and returns the straight segments
// of every stroked or filled path, mapped through the current
// transformation matrix. Lines (m, l, h) and rectangles (re) contribute;
// curves only move the current point. Paths ended with n, such as clipping
// paths, are discarded.
func paintedSegments(strm pdflib.Value) []segment {
	var (
		ctm        = identity
		saved      []matrix
		pending    []segment
		painted    []segment
		cur, start point
		open       bool
	)

	closePath := func() {
		if open && cur != start {
			pending = append(pending, segment{cur, start})
		}
		cur = start
	}

	pdflib.Interpret(strm, func(stk *pdflib.Stack, op string) {
		args := make([]float64, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop().Float64()
		}

		switch op {
		case "q":
			saved = append(saved, ctm)
		case "Q":
			if n := len(saved); n > 0 {
				ctm, saved = saved[n-1], saved[:n-1]
			}
		case "cm":
			if len(args) == 6 {
				ctm = matrix(args).concat(ctm)
			}
		case "m":
			if len(args) == 2 {
				cur = ctm.point(args[0], args[1])
				start, open = cur, true
			}
		case "l":
			if len(args) == 2 && open {
				p := ctm.point(args[0], args[1])
				pending = append(pending, segment{cur, p})
				cur = p
			}
		case "c":
			if len(args) == 6 {
				cur = ctm.point(args[4], args[5])
			}
		case "v", "y":
			if len(args) == 4 {
				cur = ctm.point(args[2], args[3])
			}
		case "h":
			closePath()
		case "re":
			if len(args) == 4 {
				x, y, w, h := args[0], args[1], args[2], args[3]
				p0, p1 := ctm.point(x, y), ctm.point(x+w, y)
				p2, p3 := ctm.point(x+w, y+h), ctm.point(x, y+h)
				pending = append(pending, segment{p0, p1}, segment{p1, p2}, segment{p2, p3}, segment{p3, p0})
				cur, start, open = p0, p0, true
			}
		case "s", "b", "b*":
			closePath()
			painted = append(painted, pending...)
			pending, open = nil, false
		case "S", "f", "F", "f*", "B", "B*":
			painted = append(painted, pending...)
			pending, open = nil, false
		case "n":
			pending, open = nil, false
		}
	})
	return painted
}
