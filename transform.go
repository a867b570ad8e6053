package aptnotice

import (
	"regexp"
	"strings"
)

// Title is a known announcement section title and the heading level it is
// promoted to.
type Title struct {
	Text  string
	Level int
}

// DefaultTitles is the lexicon of section titles found in subscription
// announcements. Order matters: a shorter title that prefixes a longer one
// is listed first so the longer one sees the marker and is left alone.
var DefaultTitles = []Title{
	{Text: "※ 단지 주요정보", Level: 1},
	{Text: "공통 유의사항", Level: 1},
	{Text: "단지 유의사항", Level: 1},
	{Text: "공급대상 및 공급금액", Level: 1},
	{Text: "공급내역 및 공급금액", Level: 1},
	{Text: "기관추천 특별공급", Level: 2},
	{Text: "다자녀가구 특별공급", Level: 2},
	{Text: "신혼부부 특별공급", Level: 2},
	{Text: "노부모부양 특별공급", Level: 2},
	{Text: "생애최초 특별공급", Level: 2},
	{Text: "청약신청 및 당첨자 발표 안내", Level: 1},
	{Text: "당첨자 및 예비입주자", Level: 1},
	{Text: "당첨자 및 예비입주자 계약 체결", Level: 1},
}

// pageNumberRe matches page footers printed as a number between dashes, e.g. "- 3 -".
var pageNumberRe = regexp.MustCompile(`-\s*\d+\s*-`)

// Transformer renders content blocks into markdown.
type Transformer struct {
	Titles []Title
}

// NewTransformer returns a Transformer using DefaultTitles.
func NewTransformer() *Transformer {
	return &Transformer{Titles: DefaultTitles}
}

// Render converts blocks into markdown parts in block order. Text blocks
// are cleaned and have known titles promoted to headings. Table blocks are
// cleaned and rendered as pipe tables; tables failing IsValidTable are
// dropped.
func (t *Transformer) Render(blocks []*ContentBlock) []string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		switch block.Kind {
		case BlockText:
			text := strings.TrimSpace(StripPageNumbers(block.Text))
			if text == "" {
				continue
			}
			parts = append(parts, t.PromoteTitles(text))
		case BlockTable:
			rows := CleanTable(block.Table)
			if !IsValidTable(rows) {
				continue
			}
			parts = append(parts, RenderMarkdownTable(rows))
		}
	}
	return parts
}

// PromoteTitles prefixes the first occurrence of each known title with the
// heading marker for its level. Titles already carrying their marker are
// left unchanged, so applying PromoteTitles twice equals applying it once.
func (t *Transformer) PromoteTitles(text string) string {
	for _, title := range t.Titles {
		if !strings.Contains(text, title.Text) {
			continue
		}
		marked := headingMarker(title.Level) + title.Text
		if strings.Contains(text, marked) {
			continue
		}
		text = strings.Replace(text, title.Text, marked, 1)
	}
	return text
}

// StripPageNumbers removes page footer artifacts such as "- 12 -".
func StripPageNumbers(text string) string {
	return pageNumberRe.ReplaceAllString(text, "")
}

// JoinMarkdown concatenates rendered parts with blank-line separators.
func JoinMarkdown(parts []string) string {
	return strings.Join(parts, "\n\n")
}

func headingMarker(level int) string {
	return strings.Repeat("#", level) + " "
}
