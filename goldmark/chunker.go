// Package goldmark splits rendered announcements into retrieval chunks
// using the github.com/yuin/goldmark markdown parser to locate headings.
package goldmark

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/aptnotice"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Ensure Chunker implements aptnotice.Chunker at compile time.
var _ aptnotice.Chunker = (*Chunker)(nil)

// maxHeadingLevel is the deepest heading that starts a new unit. Deeper
// headings stay in the content.
const maxHeadingLevel = 3

// separators are tried in order when a unit must be split.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker implements aptnotice.Chunker.
type Chunker struct {
	Policy aptnotice.ChunkPolicy
	md     goldmark.Markdown
}

// NewChunker creates a Chunker with the given policy.
func NewChunker(policy aptnotice.ChunkPolicy) *Chunker {
	return &Chunker{Policy: policy, md: goldmark.New()}
}

// Chunk splits markdown into header-bounded units and, when the policy
// enables it, splits oversized units further.
func (c *Chunker) Chunk(markdown string) ([]*aptnotice.Chunk, error) {
	if err := c.Policy.Validate(); err != nil {
		return nil, err
	}

	var chunks []*aptnotice.Chunk
	for _, u := range c.units([]byte(markdown)) {
		if !c.Policy.Split || utf8.RuneCountInString(u.content) <= c.Policy.Size {
			chunks = append(chunks, &aptnotice.Chunk{Content: u.content, Metadata: u.meta})
			continue
		}
		s := splitter{size: c.Policy.Size, overlap: c.Policy.Overlap}
		for _, part := range s.split(u.content, separators) {
			chunks = append(chunks, &aptnotice.Chunk{Content: part, Metadata: u.meta})
		}
	}
	return chunks, nil
}

type unit struct {
	content string
	meta    aptnotice.ChunkMetadata
}

// heading is a boundary line in the source.
type heading struct {
	level      int
	title      string
	start, end int
}

// units cuts src at top-level ATX headings. The text between two headings
// belongs to the heading chain in effect at its start.
func (c *Chunker) units(src []byte) []unit {
	var units []unit
	var chain [maxHeadingLevel]string

	emit := func(body []byte) {
		content := strings.TrimSpace(string(body))
		if content == "" {
			return
		}
		units = append(units, unit{
			content: content,
			meta: aptnotice.ChunkMetadata{
				Header1: chain[0],
				Header2: chain[1],
				Header3: chain[2],
			},
		})
	}

	pos := 0
	for _, h := range headings(c.md, src) {
		emit(src[pos:h.start])
		chain[h.level-1] = h.title
		for i := h.level; i < maxHeadingLevel; i++ {
			chain[i] = ""
		}
		pos = h.end
	}
	emit(src[pos:])
	return units
}

// headings returns the ATX headings of level 1 to 3 that are direct
// children of the document, in source order.
func headings(md goldmark.Markdown, src []byte) []heading {
	doc := md.Parser().Parse(text.NewReader(src))

	var out []heading
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Level > maxHeadingLevel || h.Lines().Len() == 0 {
			continue
		}
		seg := h.Lines().At(0)
		start := bytes.LastIndexByte(src[:seg.Start], '\n') + 1
		if !isATX(src[start:seg.Start]) {
			continue
		}
		end := len(src)
		if i := bytes.IndexByte(src[seg.Stop:], '\n'); i >= 0 {
			end = seg.Stop + i + 1
		}
		out = append(out, heading{
			level: h.Level,
			title: strings.TrimSpace(string(seg.Value(src))),
			start: start,
			end:   end,
		})
	}
	return out
}

// isATX reports whether the text preceding a heading's content on its line
// is an ATX marker, as opposed to a setext heading's plain first line.
func isATX(prefix []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(prefix, " "), []byte("#"))
}

// splitter cuts text into pieces of at most size runes, preferring the
// coarsest separator present and repeating up to overlap runes between
// consecutive pieces.
type splitter struct {
	size    int
	overlap int
}

func (s splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var out, good []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < s.size {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, sep)...)
	}
	return out
}

// merge packs pieces into windows no longer than size, keeping a tail of
// at most overlap runes from one window at the head of the next.
func (s splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)

	var out, window []string
	total := 0
	join := func() {
		if doc := strings.TrimSpace(strings.Join(window, sep)); doc != "" {
			out = append(out, doc)
		}
	}

	for _, p := range pieces {
		n := runeLen(p)
		gap := 0
		if len(window) > 0 {
			gap = sepLen
		}
		if total+n+gap > s.size && len(window) > 0 {
			join()
			for len(window) > 0 && (total > s.overlap || total+n+sepGap(window, sepLen) > s.size) {
				total -= runeLen(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		if len(window) > 0 {
			total += sepLen
		}
		window = append(window, p)
		total += n
	}
	join()
	return out
}

func sepGap(window []string, sepLen int) int {
	if len(window) > 0 {
		return sepLen
	}
	return 0
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
