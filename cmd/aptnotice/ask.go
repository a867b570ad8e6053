package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/aptnotice"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	model, err := aptnotice.ParseModelChoice(c.Model)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}

	answer := deps.Answerer.Answer(deps.Ctx, aptnotice.Question{
		DocID: c.DocID,
		Text:  c.Question,
		Model: model,
	})

	fmt.Fprintln(deps.Stdout, answer.Text)
	if c.Sources {
		for i, r := range answer.Sources {
			fmt.Fprintf(deps.Stdout, "\n[%d] %s (%.3f)\n%s\n", i+1, headerPath(r.Chunk), r.Score, r.Chunk.Content)
		}
	}
	return nil
}

// headerPath joins the non-empty headings of a chunk.
func headerPath(c *aptnotice.Chunk) string {
	var parts []string
	for _, h := range []string{c.Metadata.Header1, c.Metadata.Header2, c.Metadata.Header3} {
		if h != "" {
			parts = append(parts, h)
		}
	}
	if len(parts) == 0 {
		return "(no heading)"
	}
	return strings.Join(parts, " > ")
}
