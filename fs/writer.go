// Package fs exports processed announcements as markdown files.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/aptnotice"
)

// DocIDToPath converts a doc_id to a file name. Path separators and other
// characters unsafe in file names become underscores.
// Example: 2024/강남-A1 → 2024_강남-A1.md
func DocIDToPath(docID string) (string, error) {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(docID))

	if name == "" || strings.Trim(name, ".") == "" {
		return "", aptnotice.Errorf(aptnotice.EINVALID, "invalid doc_id %q", docID)
	}
	return name + ".md", nil
}

// FormatDocument formats a document with YAML frontmatter.
func FormatDocument(doc *aptnotice.ProcessedDocument) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("doc_id: ")
	b.WriteString(doc.DocID)
	b.WriteString("\nsource: ")
	b.WriteString(doc.Source)
	b.WriteString("\nexported: ")
	b.WriteString(doc.ProcessedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(doc.Markdown)
	return b.String()
}

// Ensure Writer implements aptnotice.DocumentWriter at compile time.
var _ aptnotice.DocumentWriter = (*Writer)(nil)

// Writer writes documents as markdown files to a directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteDocument writes a document to <baseDir>/<doc_id>.md. The file is
// written to a temporary name first and renamed into place, so readers
// never see a partial export.
func (w *Writer) WriteDocument(ctx context.Context, doc *aptnotice.ProcessedDocument) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	relPath, err := DocIDToPath(doc.DocID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(w.baseDir, 0755); err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(FormatDocument(doc)), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
