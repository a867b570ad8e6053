package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/aptnotice"
)

// Ensure LoggingIngester implements aptnotice.Ingester.
var _ aptnotice.Ingester = (*LoggingIngester)(nil)

// LoggingIngester wraps an Ingester with logging.
type LoggingIngester struct {
	next   aptnotice.Ingester
	logger *slog.Logger
}

// NewLoggingIngester creates a new LoggingIngester.
func NewLoggingIngester(next aptnotice.Ingester, logger *slog.Logger) *LoggingIngester {
	return &LoggingIngester{next: next, logger: logger}
}

// Ingest delegates to the wrapped ingester and logs the result.
func (i *LoggingIngester) Ingest(ctx context.Context, path, docID string) (result *aptnotice.IngestResult, err error) {
	defer func(begin time.Time) {
		i.log("ingest pdf", path, docID, result, begin, err)
	}(time.Now())
	return i.next.Ingest(ctx, path, docID)
}

// IngestHTML delegates to the wrapped ingester and logs the result.
func (i *LoggingIngester) IngestHTML(ctx context.Context, html, docID string) (result *aptnotice.IngestResult, err error) {
	defer func(begin time.Time) {
		i.log("ingest html", "html", docID, result, begin, err)
	}(time.Now())
	return i.next.IngestHTML(ctx, html, docID)
}

func (i *LoggingIngester) log(msg, source, docID string, result *aptnotice.IngestResult, begin time.Time, err error) {
	attrs := []any{"doc_id", docID, "source", source}
	if result != nil {
		attrs = append(attrs,
			"chunks", result.Chunks,
			"added", result.Added,
			"skipped", result.Skipped,
		)
	}
	attrs = append(attrs, "duration", time.Since(begin), "err", err)
	i.logger.Info(msg, attrs...)
}
