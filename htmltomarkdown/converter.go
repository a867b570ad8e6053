// Package htmltomarkdown converts digitized announcement HTML to Markdown
// using github.com/JohannesKaufmann/html-to-markdown/v2.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/aptnotice"
)

// Ensure Converter implements aptnotice.Converter at compile time.
var _ aptnotice.Converter = (*Converter)(nil)

// Converter converts HTML to Markdown. Tables bypass the generic
// conversion: each one is resolved into a dense grid, cleaned and rendered
// as a pipe table, or dropped when it fails validation.
type Converter struct {
	conv   *converter.Converter
	tables aptnotice.TableNormalizer
}

// NewConverter creates a new Converter that resolves tables with tables.
func NewConverter(tables aptnotice.TableNormalizer) *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return &Converter{conv: conv, tables: tables}
}

// placeholder marks where a rendered table goes. It contains only letters
// and digits so the markdown converter leaves it untouched.
func placeholder(i int) string {
	return fmt.Sprintf("APTNOTICETABLE%dEND", i)
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", aptnotice.Errorf(aptnotice.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	var rendered []string
	var tableErr error
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		if tableErr != nil || s.ParentsFiltered("table").Length() > 0 {
			return
		}
		markup, err := goquery.OuterHtml(s)
		if err != nil {
			tableErr = err
			return
		}
		md, err := c.renderTable(markup)
		if err != nil {
			tableErr = err
			return
		}
		s.ReplaceWithHtml("<p>" + placeholder(len(rendered)) + "</p>")
		rendered = append(rendered, md)
	})
	if tableErr != nil {
		return "", fmt.Errorf("failed to normalize table: %w", tableErr)
	}

	body, err := doc.Html()
	if err != nil {
		return "", err
	}

	result, err := c.conv.ConvertString(body)
	if err != nil {
		return "", err
	}

	for i, md := range rendered {
		result = strings.Replace(result, placeholder(i), md, 1)
	}
	return strings.TrimSpace(result), nil
}

func (c *Converter) renderTable(markup string) (string, error) {
	grid, err := c.tables.Normalize(markup)
	if err != nil {
		return "", err
	}

	raw := make(aptnotice.RawTable, len(grid))
	for i, row := range grid {
		raw[i] = make([]*string, len(row))
		for j := range row {
			raw[i][j] = &row[j]
		}
	}

	rows := aptnotice.CleanTable(raw)
	if !aptnotice.IsValidTable(rows) {
		return "", nil
	}
	return aptnotice.RenderMarkdownTable(rows), nil
}
