package aptnotice

import (
	"strings"
	"unicode/utf8"
)

// TableNormalizer resolves merged-cell table markup into a dense grid.
type TableNormalizer interface {
	// Normalize returns a rectangular grid in which every coordinate holds
	// the text of the cell whose span covers it. Markup without cells
	// yields an empty grid and no error.
	Normalize(markup string) ([][]string, error)
}

// maxAnnotationLen is the length above which a lone cell is treated as a
// caption or footnote rather than data.
const maxAnnotationLen = 20

// annotationPrefixes mark footnote and bullet rows printed inside table borders.
var annotationPrefixes = []string{"※", "■", "-", "주)", "*"}

// CleanTable repairs merge artifacts in a raw grid and trims non-data rows
// from its top and bottom.
//
// A nil cell after the first inherits the value on its left. A nil first
// cell becomes "". Rows are then dropped from the top while IsGarbageRow
// holds, and afterwards from the bottom. Interior rows are never removed.
func CleanTable(raw RawTable) [][]string {
	if len(raw) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		row := make([]string, len(r))
		for i, cell := range r {
			switch {
			case cell != nil:
				row[i] = *cell
			case i > 0:
				row[i] = row[i-1]
			}
		}
		rows = append(rows, row)
	}

	for len(rows) > 0 && IsGarbageRow(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && IsGarbageRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// IsGarbageRow reports whether a row is padding or caption text rather
// than table data. Rows with two or more non-empty cells are never garbage.
func IsGarbageRow(row []string) bool {
	var values []string
	for _, cell := range row {
		if v := strings.TrimSpace(cell); v != "" {
			values = append(values, v)
		}
	}

	switch len(values) {
	case 0:
		return true
	case 1:
	default:
		return false
	}

	text := values[0]
	if utf8.RuneCountInString(text) > maxAnnotationLen {
		return true
	}
	for _, prefix := range annotationPrefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// IsValidTable reports whether a cleaned grid is shaped like a real table:
// at least two rows and at least two columns. Single-column grids are
// usually mis-detected text boxes.
func IsValidTable(rows [][]string) bool {
	return len(rows) >= 2 && len(rows[0]) >= 2
}

// RenderMarkdownTable renders rows as a GitHub pipe table using the first
// row as the header. Short rows are padded with empty cells.
func RenderMarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := 0; i < width; i++ {
			var cell string
			if i < len(row) {
				cell = escapeCell(row[i])
			}
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < width; i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func escapeCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
