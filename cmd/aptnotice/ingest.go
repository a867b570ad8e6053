package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/bloom"
	"github.com/fwojciec/aptnotice/fs"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	docID := c.DocID
	if docID == "" {
		docID = strings.TrimSuffix(filepath.Base(c.Source), filepath.Ext(c.Source))
	}

	p := *deps.Pipeline
	if c.ExportDir != "" {
		p.Writer = fs.NewWriter(c.ExportDir)
	}
	if c.Dedupe {
		p.Deduplicator = bloom.NewDeduplicator()
	}

	var (
		result *aptnotice.IngestResult
		err    error
	)
	if c.HTML {
		data, rerr := os.ReadFile(c.Source)
		if rerr != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", rerr)
			return rerr
		}
		result, err = p.IngestHTML(deps.Ctx, string(data), docID)
	} else {
		result, err = p.Ingest(deps.Ctx, c.Source, docID)
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}

	printIngestResult(deps, result)
	return nil
}

func printIngestResult(deps *Dependencies, r *aptnotice.IngestResult) {
	switch {
	case r.Chunks == 0:
		fmt.Fprintf(deps.Stdout, "No content indexed for %q\n", r.DocID)
	case r.Skipped:
		fmt.Fprintf(deps.Stdout, "Document %q already indexed (%d chunks)\n", r.DocID, r.Chunks)
	default:
		fmt.Fprintf(deps.Stdout, "Indexed %q: %d chunks from %d blocks\n", r.DocID, r.Added, r.Blocks)
	}
	if r.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, "Dropped %d duplicate chunks\n", r.Duplicates)
	}
	if r.Tokens > 0 {
		fmt.Fprintf(deps.Stdout, "Tokens: %d\n", r.Tokens)
	}
	for _, s := range r.Sections {
		fmt.Fprintf(deps.Stdout, "%s %s\n", strings.Repeat("  ", s.Level-1)+"-", s.Title)
	}
}
