package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocIDToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		docID   string
		want    string
		wantErr bool
	}{
		{
			name:  "simple id",
			docID: "notice-2024-001",
			want:  "notice-2024-001.md",
		},
		{
			name:  "keeps hangul",
			docID: "강남-A1",
			want:  "강남-A1.md",
		},
		{
			name:  "replaces path separators",
			docID: "2024/강남\\A1",
			want:  "2024_강남_A1.md",
		},
		{
			name:  "replaces reserved characters",
			docID: `a:b*c?d"e<f>g|h`,
			want:  "a_b_c_d_e_f_g_h.md",
		},
		{
			name:  "trims surrounding space",
			docID: "  notice  ",
			want:  "notice.md",
		},
		{
			name:    "rejects empty id",
			docID:   "  ",
			wantErr: true,
		},
		{
			name:    "rejects dot names",
			docID:   "..",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.DocIDToPath(tt.docID)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDocument(t *testing.T) {
	t.Parallel()

	t.Run("formats document with frontmatter", func(t *testing.T) {
		t.Parallel()

		doc := &aptnotice.ProcessedDocument{
			DocID:       "notice-1",
			Source:      "/data/notice.pdf",
			Markdown:    "# 공급개요\n\n단지 소개",
			ProcessedAt: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		}

		got := fs.FormatDocument(doc)

		want := `---
doc_id: notice-1
source: /data/notice.pdf
exported: 2025-01-08
---

# 공급개요

단지 소개`

		assert.Equal(t, want, got)
	})
}

func TestWriter_WriteDocument(t *testing.T) {
	t.Parallel()

	t.Run("writes document to doc_id path with frontmatter", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir)

		doc := &aptnotice.ProcessedDocument{
			DocID:       "notice-1",
			Source:      "notice.pdf",
			Markdown:    "| 주택형 | 세대수 |\n|---|---|\n| 84A | 50 |",
			ProcessedAt: time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC),
		}

		err := w.WriteDocument(context.Background(), doc)

		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(baseDir, "notice-1.md"))
		require.NoError(t, err)
		assert.Equal(t, fs.FormatDocument(doc), string(content))

		_, err = os.Stat(filepath.Join(baseDir, "notice-1.md.tmp"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("creates the base directory", func(t *testing.T) {
		t.Parallel()

		baseDir := filepath.Join(t.TempDir(), "exports", "debug")
		w := fs.NewWriter(baseDir)

		err := w.WriteDocument(context.Background(), &aptnotice.ProcessedDocument{DocID: "notice-1"})

		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(baseDir, "notice-1.md"))
		require.NoError(t, err)
	})

	t.Run("overwrites a previous export", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		w := fs.NewWriter(baseDir)
		ctx := context.Background()

		require.NoError(t, w.WriteDocument(ctx, &aptnotice.ProcessedDocument{DocID: "n", Markdown: "old"}))
		require.NoError(t, w.WriteDocument(ctx, &aptnotice.ProcessedDocument{DocID: "n", Markdown: "new"}))

		content, err := os.ReadFile(filepath.Join(baseDir, "n.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "new")
		assert.NotContains(t, string(content), "old")
	})

	t.Run("validates document", func(t *testing.T) {
		t.Parallel()

		w := fs.NewWriter(t.TempDir())

		err := w.WriteDocument(context.Background(), &aptnotice.ProcessedDocument{Markdown: "Content"})

		require.Error(t, err)
		assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
	})
}
