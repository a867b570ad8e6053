package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/rag"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Store    aptnotice.VectorStore
	Index    aptnotice.VectorIndex
	Pipeline *rag.Pipeline
	Answerer aptnotice.Answerer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Ingest IngestCmd `cmd:"" help:"Extract, chunk and index an announcement"`
	Ask    AskCmd    `cmd:"" help:"Ask a question about an indexed announcement"`
	Search SearchCmd `cmd:"" help:"Show the chunks most similar to a query"`
	Count  CountCmd  `cmd:"" help:"Count indexed chunks"`
	Clear  ClearCmd  `cmd:"" help:"Delete every indexed chunk"`
	Serve  ServeCmd  `cmd:"" help:"Serve the HTTP API"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Source    string `arg:"" type:"existingfile" help:"Announcement PDF (or HTML with --html)"`
	DocID     string `name:"doc-id" help:"Document identity (defaults to the file name)"`
	HTML      bool   `help:"Treat the source as digitized HTML"`
	ExportDir string `name:"export-dir" type:"path" help:"Write the rendered markdown to this directory"`
	Dedupe    bool   `help:"Drop chunks repeating earlier content"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	DocID    string `arg:"" name:"doc-id" help:"Document identity"`
	Question string `arg:"" help:"Question to ask about the announcement"`
	Model    string `short:"m" default:"gemini" enum:"gemini,openai" help:"Language model backend (gemini, openai)"`
	Sources  bool   `help:"Print the retrieved chunks after the answer"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Search text"`
	DocID string `name:"doc-id" help:"Restrict results to one document"`
	K     int    `short:"k" default:"3" help:"Number of results"`
}

// CountCmd is the "count" subcommand.
type CountCmd struct {
	DocID string `name:"doc-id" help:"Count only chunks of one document"`
}

// ClearCmd is the "clear" subcommand.
type ClearCmd struct {
	Force bool `help:"Confirm deletion"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to :$PORT)"`
}
