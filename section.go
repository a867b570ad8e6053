package aptnotice

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Section is a heading found in a rendered announcement.
type Section struct {
	Level  int    `json:"level"`
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
}

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)

// ExtractSections returns the ATX headings of a markdown document in order.
// Anchors are lowercase, hyphen-separated and made unique with numeric
// suffixes, so repeated titles across pages stay addressable.
func ExtractSections(markdown string) []Section {
	matches := headingRe.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]Section, 0, len(matches))
	seen := make(map[string]int)
	for _, m := range matches {
		title := strings.TrimSpace(strings.TrimRight(m[2], "#"))
		if title == "" {
			continue
		}
		anchor := generateAnchor(title)
		if n, ok := seen[anchor]; ok {
			seen[anchor] = n + 1
			anchor += "-" + strconv.Itoa(n)
		} else {
			seen[anchor] = 1
		}
		sections = append(sections, Section{
			Level:  len(m[1]),
			Title:  title,
			Anchor: anchor,
		})
	}
	return sections
}

// generateAnchor keeps letters and digits (including Hangul) and collapses
// runs of spaces and hyphens into a single hyphen.
func generateAnchor(title string) string {
	var sb strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pending && sb.Len() > 0 {
				sb.WriteRune('-')
			}
			pending = false
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '-':
			pending = true
		}
	}
	return sb.String()
}
