package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/aptnotice"
)

// snippetRunes is the length of the content preview printed per result.
const snippetRunes = 200

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	var filter aptnotice.SearchFilter
	if c.DocID != "" {
		filter.DocID = aptnotice.StringPtr(c.DocID)
	}

	results, err := deps.Index.Search(deps.Ctx, c.Query, c.K, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(deps.Stdout, "%d. [%.3f] %s  (%s)\n", i+1, r.Score, headerPath(r.Chunk), r.Chunk.Metadata.DocID)
		fmt.Fprintf(deps.Stdout, "   %s\n", snippet(r.Chunk.Content))
	}
	return nil
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > snippetRunes {
		return string(r[:snippetRunes]) + "..."
	}
	return s
}
