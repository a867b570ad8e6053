// Package slog provides log/slog decorators for aptnotice services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/aptnotice"
)

// Ensure LoggingVectorIndex implements aptnotice.VectorIndex.
var _ aptnotice.VectorIndex = (*LoggingVectorIndex)(nil)

// LoggingVectorIndex wraps a VectorIndex with logging.
type LoggingVectorIndex struct {
	next   aptnotice.VectorIndex
	logger *slog.Logger
}

// NewLoggingVectorIndex creates a new LoggingVectorIndex.
func NewLoggingVectorIndex(next aptnotice.VectorIndex, logger *slog.Logger) *LoggingVectorIndex {
	return &LoggingVectorIndex{next: next, logger: logger}
}

// Add delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) Add(ctx context.Context, chunks []*aptnotice.Chunk) (n int, err error) {
	defer func(begin time.Time) {
		i.logger.Info("index add",
			"doc_id", docIDOf(chunks),
			"chunks", len(chunks),
			"count", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Add(ctx, chunks)
}

// Search delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) Search(ctx context.Context, query string, k int, filter aptnotice.SearchFilter) (results []aptnotice.SearchResult, err error) {
	defer func(begin time.Time) {
		var docID string
		if filter.DocID != nil {
			docID = *filter.DocID
		}
		i.logger.Info("index search",
			"doc_id", docID,
			"k", k,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Search(ctx, query, k, filter)
}

// Clear delegates to the wrapped index and logs the operation.
func (i *LoggingVectorIndex) Clear(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		i.logger.Warn("index clear",
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return i.next.Clear(ctx)
}

func docIDOf(chunks []*aptnotice.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0].Metadata.DocID
}

// Ensure LoggingEmbedder implements aptnotice.Embedder.
var _ aptnotice.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with debug logging.
type LoggingEmbedder struct {
	next   aptnotice.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next aptnotice.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		dims := 0
		if len(vectors) > 0 {
			dims = len(vectors[0])
		}
		e.logger.Debug("embed",
			"count", len(texts),
			"dims", dims,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}
