package mock

import (
	"context"

	"github.com/fwojciec/aptnotice"
)

var _ aptnotice.Generator = (*Generator)(nil)

// Generator is a mock implementation of aptnotice.Generator.
type Generator struct {
	CompleteFn func(ctx context.Context, req aptnotice.Completion) (string, error)
}

func (g *Generator) Complete(ctx context.Context, req aptnotice.Completion) (string, error) {
	return g.CompleteFn(ctx, req)
}

var _ aptnotice.Answerer = (*Answerer)(nil)

// Answerer is a mock implementation of aptnotice.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, q aptnotice.Question) *aptnotice.Answer
}

func (a *Answerer) Answer(ctx context.Context, q aptnotice.Question) *aptnotice.Answer {
	return a.AnswerFn(ctx, q)
}
