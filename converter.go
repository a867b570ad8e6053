package aptnotice

// Converter converts digitized announcement HTML to Markdown.
type Converter interface {
	// Convert transforms HTML into Markdown. Tables are normalized and
	// cleaned the same way as tables detected in a PDF.
	Convert(html string) (string, error)
}
