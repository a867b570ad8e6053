package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/aptnotice"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// Ensure TableNormalizer implements aptnotice.TableNormalizer at compile time.
var _ aptnotice.TableNormalizer = (*TableNormalizer)(nil)

// TableNormalizer resolves rowspan and colspan in HTML tables.
type TableNormalizer struct{}

// NewTableNormalizer creates a new TableNormalizer.
func NewTableNormalizer() *TableNormalizer {
	return &TableNormalizer{}
}

// Span limits follow the HTML table model: colspan is clamped to 1000 and
// rowspan to 65534. A rowspan is further cut at the last row of the table.
const (
	maxColSpan = 1000
	maxRowSpan = 65534
)

// coord is a (row, col) grid position.
type coord struct{ row, col int }

// Normalize parses table markup and returns a dense grid. Rows are the tr
// elements in document order and cells are their direct td and th
// children. A spanning cell claims its whole rectangle; cells placed later
// skip columns claimed by earlier rows.
func (n *TableNormalizer) Normalize(markup string) ([][]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	grid := make(map[coord]string)
	maxRow, maxCol := -1, -1

	trs := doc.Find("tr")
	total := trs.Length()
	trs.Each(func(r int, row *goquery.Selection) {
		c := 0
		row.Children().FilterFunction(isCell).Each(func(_ int, cell *goquery.Selection) {
			for {
				if _, taken := grid[coord{r, c}]; !taken {
					break
				}
				c++
			}

			text := cellText(cell)
			rowSpan := min(span(cell, "rowspan", maxRowSpan), total-r)
			colSpan := span(cell, "colspan", maxColSpan)
			for i := r; i < r+rowSpan; i++ {
				for j := c; j < c+colSpan; j++ {
					if _, taken := grid[coord{i, j}]; taken {
						continue
					}
					grid[coord{i, j}] = text
					maxRow = max(maxRow, i)
					maxCol = max(maxCol, j)
				}
			}
			c += colSpan
		})
	})

	rows := make([][]string, maxRow+1)
	for i := range rows {
		rows[i] = make([]string, maxCol+1)
		for j := range rows[i] {
			rows[i][j] = grid[coord{i, j}]
		}
	}
	return rows, nil
}

func isCell(_ int, s *goquery.Selection) bool {
	node := s.Get(0)
	return node.DataAtom == atom.Td || node.DataAtom == atom.Th
}

// cellText collapses whitespace and applies NFC so decomposed Hangul
// compares equal to the precomposed form.
func cellText(cell *goquery.Selection) string {
	text := strings.Join(strings.Fields(cell.Text()), " ")
	return norm.NFC.String(text)
}

// span reads a rowspan or colspan attribute, clamped to limit. Missing,
// malformed and non-positive values count as 1.
func span(cell *goquery.Selection, attr string, limit int) int {
	v, ok := cell.Attr(attr)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, limit)
}
