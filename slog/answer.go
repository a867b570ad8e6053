package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/aptnotice"
)

// Ensure LoggingGenerator implements aptnotice.Generator.
var _ aptnotice.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging. Prompts are not logged.
type LoggingGenerator struct {
	next    aptnotice.Generator
	backend aptnotice.ModelChoice
	logger  *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator for the named backend.
func NewLoggingGenerator(next aptnotice.Generator, backend aptnotice.ModelChoice, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, backend: backend, logger: logger}
}

// Complete delegates to the wrapped generator and logs the operation.
func (g *LoggingGenerator) Complete(ctx context.Context, req aptnotice.Completion) (text string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"backend", string(g.backend),
			"chars", len([]rune(text)),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Complete(ctx, req)
}

// Ensure LoggingAnswerer implements aptnotice.Answerer.
var _ aptnotice.Answerer = (*LoggingAnswerer)(nil)

// LoggingAnswerer wraps an Answerer with logging.
type LoggingAnswerer struct {
	next   aptnotice.Answerer
	logger *slog.Logger
}

// NewLoggingAnswerer creates a new LoggingAnswerer.
func NewLoggingAnswerer(next aptnotice.Answerer, logger *slog.Logger) *LoggingAnswerer {
	return &LoggingAnswerer{next: next, logger: logger}
}

// Answer delegates to the wrapped answerer and logs the outcome.
func (a *LoggingAnswerer) Answer(ctx context.Context, q aptnotice.Question) *aptnotice.Answer {
	begin := time.Now()
	answer := a.next.Answer(ctx, q)

	backend, sources := "", 0
	if answer != nil {
		backend = string(answer.Backend)
		sources = len(answer.Sources)
	}
	a.logger.Info("answer",
		"doc_id", q.DocID,
		"model", string(q.Model),
		"backend", backend,
		"sources", sources,
		"duration", time.Since(begin),
	)
	return answer
}
