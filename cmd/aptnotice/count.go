package main

import (
	"fmt"

	"github.com/fwojciec/aptnotice"
)

// Run executes the count command.
func (c *CountCmd) Run(deps *Dependencies) error {
	var filter aptnotice.SearchFilter
	if c.DocID != "" {
		filter.DocID = aptnotice.StringPtr(c.DocID)
	}

	n, err := deps.Store.Count(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, n)
	return nil
}

// Run executes the clear command.
func (c *ClearCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return aptnotice.Errorf(aptnotice.EINVALID, "use --force to confirm deletion")
	}

	if err := deps.Index.Clear(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Cleared index")
	return nil
}
