package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/aptnotice"
)

// Ensure Pipeline implements aptnotice.Ingester at compile time.
var _ aptnotice.Ingester = (*Pipeline)(nil)

// Pipeline runs the write path from a source announcement to the index.
// Inspector, Converter, Writer, Deduplicator and TokenCounter are optional.
type Pipeline struct {
	Inspector   aptnotice.PDFInspector
	Extractor   aptnotice.LayoutExtractor
	Transformer *aptnotice.Transformer
	Converter   aptnotice.Converter
	Chunker     aptnotice.Chunker
	Index       aptnotice.VectorIndex

	Writer       aptnotice.DocumentWriter
	Deduplicator aptnotice.Deduplicator
	TokenCounter aptnotice.TokenCounter

	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Ingest indexes the PDF at path under docID.
func (p *Pipeline) Ingest(ctx context.Context, path, docID string) (*aptnotice.IngestResult, error) {
	if docID == "" {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "doc_id required")
	}

	result := &aptnotice.IngestResult{DocID: docID}

	if p.Inspector != nil {
		info, err := p.Inspector.Inspect(ctx, path)
		if err != nil {
			return nil, err
		}
		result.Pages = info.PageCount
	}

	blocks, err := aptnotice.CollectBlocks(p.Extractor.Extract(ctx, path))
	if err != nil {
		return nil, fmt.Errorf("extract layout: %w", err)
	}
	result.Blocks = len(blocks)

	parts := p.transformer().Render(blocks)
	p.logger().Debug("rendered document", "doc_id", docID, "blocks", len(blocks), "parts", len(parts))

	if err := p.index(ctx, path, parts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// IngestHTML indexes a digitized HTML rendition under docID. Tables are
// normalized by the converter; the remaining paragraphs receive the same
// page-number stripping and title promotion as PDF text.
func (p *Pipeline) IngestHTML(ctx context.Context, html, docID string) (*aptnotice.IngestResult, error) {
	if docID == "" {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "doc_id required")
	}
	if p.Converter == nil {
		return nil, aptnotice.Errorf(aptnotice.EINVALID, "html ingestion is not configured")
	}

	md, err := p.Converter.Convert(html)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}

	t := p.transformer()
	var parts []string
	for _, part := range strings.Split(md, "\n\n") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "|") {
			part = strings.TrimSpace(aptnotice.StripPageNumbers(part))
			if part != "" {
				part = t.PromoteTitles(part)
			}
		}
		if part != "" {
			parts = append(parts, part)
		}
	}

	result := &aptnotice.IngestResult{DocID: docID}
	if err := p.index(ctx, "html", parts, result); err != nil {
		return nil, err
	}
	return result, nil
}

// index joins rendered parts, chunks them and writes the chunks to the
// index, filling in result.
func (p *Pipeline) index(ctx context.Context, source string, parts []string, result *aptnotice.IngestResult) error {
	logger := p.logger().With("doc_id", result.DocID)

	md := aptnotice.JoinMarkdown(parts)
	result.Parts = len(parts)
	result.Sections = aptnotice.ExtractSections(md)

	if p.Writer != nil {
		doc := &aptnotice.ProcessedDocument{
			DocID:       result.DocID,
			Source:      source,
			Parts:       parts,
			Markdown:    md,
			Sections:    result.Sections,
			ProcessedAt: p.now(),
		}
		if err := p.Writer.WriteDocument(ctx, doc); err != nil {
			return fmt.Errorf("export markdown: %w", err)
		}
	}

	chunks, err := p.Chunker.Chunk(md)
	if err != nil {
		return fmt.Errorf("chunk markdown: %w", err)
	}
	aptnotice.AssignDocID(chunks, result.DocID)

	if p.Deduplicator != nil {
		var dropped int
		chunks, dropped = p.Deduplicator.Deduplicate(chunks)
		result.Duplicates = dropped
	}
	result.Chunks = len(chunks)

	if len(chunks) == 0 {
		logger.Warn("document produced no chunks")
		return nil
	}

	if p.TokenCounter != nil {
		for _, c := range chunks {
			n, err := p.TokenCounter.CountTokens(ctx, c.Content)
			if err != nil {
				logger.Warn("token count failed", "err", err)
				result.Tokens = 0
				break
			}
			result.Tokens += n
		}
	}

	added, err := p.Index.Add(ctx, chunks)
	if err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	result.Added = added
	result.Skipped = added == 0

	logger.Info("document ingested", "chunks", result.Chunks, "added", added, "skipped", result.Skipped)
	return nil
}

func (p *Pipeline) transformer() *aptnotice.Transformer {
	if p.Transformer == nil {
		return aptnotice.NewTransformer()
	}
	return p.Transformer
}

func (p *Pipeline) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
