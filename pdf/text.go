package pdf

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

// Glyph is a positioned run of text in page space with y growing downward.
type Glyph struct {
	Text string
	X0   float64
	X1   float64

	// Baseline is the y coordinate the text sits on.
	Baseline float64
	Size     float64
}

// center returns the midpoint of the glyph box.
func (g Glyph) center() (x, y float64) {
	return (g.X0 + g.X1) / 2, g.Baseline - g.Size/2
}

// spaceRatio is the horizontal gap, relative to font size, above which two
// runs on a line are separated by a space.
const spaceRatio = 0.2

// lineRatio is the baseline difference, relative to font size, below
// which two runs belong to the same line.
const lineRatio = 0.5

// AssembleText orders glyphs into lines by baseline and then by x, and
// joins them into text. Lines are separated by newlines.
func AssembleText(glyphs []Glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b Glyph) int {
		return cmp.Compare(a.Baseline, b.Baseline)
	})

	var lines [][]Glyph
	for _, g := range sorted {
		if n := len(lines); n > 0 {
			ref := lines[n-1][0]
			tol := math.Max(1, lineRatio*math.Max(ref.Size, g.Size))
			if math.Abs(g.Baseline-ref.Baseline) <= tol {
				lines[n-1] = append(lines[n-1], g)
				continue
			}
		}
		lines = append(lines, []Glyph{g})
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := assembleLine(line); text != "" {
			out = append(out, text)
		}
	}
	return strings.Join(out, "\n")
}

func assembleLine(line []Glyph) string {
	slices.SortStableFunc(line, func(a, b Glyph) int {
		return cmp.Compare(a.X0, b.X0)
	})

	var sb strings.Builder
	prevEnd := math.Inf(-1)
	for _, g := range line {
		if sb.Len() > 0 && g.X0-prevEnd > spaceRatio*g.Size {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.Text)
		prevEnd = math.Max(prevEnd, g.X1)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// estimateWidth guesses the advance of a run whose width the font did not
// report.
func estimateWidth(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size * 0.5
}
