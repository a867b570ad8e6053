package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/gemini"
	"github.com/fwojciec/aptnotice/goldmark"
	"github.com/fwojciec/aptnotice/goquery"
	"github.com/fwojciec/aptnotice/htmltomarkdown"
	"github.com/fwojciec/aptnotice/openai"
	"github.com/fwojciec/aptnotice/pdf"
	"github.com/fwojciec/aptnotice/pdfcpu"
	"github.com/fwojciec/aptnotice/pgvector"
	"github.com/fwojciec/aptnotice/rag"
	aslog "github.com/fwojciec/aptnotice/slog"
	"github.com/fwojciec/aptnotice/sqlite"
	"google.golang.org/genai"
)

// collection names the vector collection holding announcement chunks.
const collection = "apt_notices"

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Getenv reads configuration. Defaults to os.Getenv.
	Getenv func(string) string

	// DotEnv is loaded into the environment before configuration is read.
	DotEnv string

	// Open stores, closed by Close.
	DB *sqlite.DB
	PG *pgvector.Store
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Getenv: os.Getenv,
		DotEnv: ".env",
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.PG != nil {
		m.PG.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("aptnotice"),
		kong.Description("Question answering over apartment subscription announcements."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified")
		return fmt.Errorf("no command specified. Run 'aptnotice --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if m.DotEnv != "" {
		if err := LoadDotEnv(m.DotEnv); err != nil {
			fmt.Fprintf(stderr, "error: failed to load %s: %v\n", m.DotEnv, err)
			return err
		}
	}
	cfg, err := LoadConfig(m.Getenv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	deps.Config = cfg

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := m.openStore(ctx, cfg, deps); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}
	defer m.Close()

	command := kongCtx.Command()
	if command == "count" || command == "clear" {
		deps.Index = aslog.NewLoggingVectorIndex(rag.NewIndex(nil, deps.Store), deps.Logger)
		return kongCtx.Run(deps)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", aptnotice.ErrorMessage(err))
		return err
	}
	if err := m.wireServices(ctx, cfg, deps); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	return kongCtx.Run(deps)
}

// openStore opens the pgvector store when a DSN is configured and the
// SQLite database otherwise.
func (m *Main) openStore(ctx context.Context, cfg *Config, deps *Dependencies) error {
	if cfg.PGDSN != "" {
		store, err := pgvector.Open(ctx, cfg.PGDSN, collection, cfg.EmbedDims)
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check APTNOTICE_PG_DSN and that the vector extension is available")
			return fmt.Errorf("failed to open pgvector store: %w", err)
		}
		m.PG = store
		deps.Store = store
		return nil
	}

	m.DB = sqlite.NewDB(cfg.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Set APTNOTICE_DB to use a different database path")
		return fmt.Errorf("failed to open database at %q: %w", cfg.DBPath, err)
	}
	deps.Store = sqlite.NewStore(m.DB, collection)
	return nil
}

// wireServices builds the embedder, generators, index, answerer and
// ingestion pipeline.
func (m *Main) wireServices(ctx context.Context, cfg *Config, deps *Dependencies) error {
	logger := deps.Logger
	generators := make(map[aptnotice.ModelChoice]aptnotice.Generator)

	var (
		embedder aptnotice.Embedder
		counter  aptnotice.TokenCounter
	)

	if cfg.GeminiAPIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GOOGLE_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		gen := gemini.NewGenerator(client, gemini.DefaultGenerateModel)
		gen.Retry.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.Warn("gemini quota exceeded, retrying", "attempt", attempt, "delay", delay, "err", err)
		}
		generators[aptnotice.ModelGemini] = aslog.NewLoggingGenerator(gen, aptnotice.ModelGemini, logger)

		if cfg.Embedder == aptnotice.ModelGemini {
			e := gemini.NewEmbedder(client, gemini.DefaultEmbedModel)
			e.Dims = cfg.EmbedDims
			e.Timeout = cfg.EmbedTimeout
			embedder = e

			tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
			if err != nil {
				logger.Warn("token counting disabled", "err", err)
			} else {
				counter = tc
			}
		}
	}

	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		generators[aptnotice.ModelOpenAI] = aslog.NewLoggingGenerator(
			openai.NewGenerator(client, openai.DefaultGenerateModel), aptnotice.ModelOpenAI, logger)

		if cfg.Embedder == aptnotice.ModelOpenAI {
			e := openai.NewEmbedder(client, openai.DefaultEmbedModel)
			e.Dims = cfg.EmbedDims
			e.Timeout = cfg.EmbedTimeout
			embedder = e

			tc, err := openai.NewTokenCounter(openai.DefaultEmbedModel)
			if err != nil {
				logger.Warn("token counting disabled", "err", err)
			} else {
				counter = tc
			}
		}
	}

	index := rag.NewIndex(aslog.NewLoggingEmbedder(embedder, logger), deps.Store)
	index.Batch = cfg.BatchPolicy()
	index.Logger = logger
	index.Retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("embedding quota exceeded, retrying", "attempt", attempt, "delay", delay, "err", err)
	}
	index.Progress = func(e rag.ProgressEvent) {
		logger.Debug("indexing progress", "doc_id", e.DocID, "completed", e.Completed, "total", e.Total)
	}
	deps.Index = aslog.NewLoggingVectorIndex(index, logger)

	answerer := rag.NewAnswerer(deps.Index, generators)
	answerer.Logger = logger
	deps.Answerer = aslog.NewLoggingAnswerer(answerer, logger)

	extractor := pdf.NewExtractor()
	extractor.OnPageError = func(page int, err error) {
		logger.Warn("skipping unreadable page", "page", page, "err", err)
	}

	deps.Pipeline = &rag.Pipeline{
		Inspector:    pdfcpu.NewInspector(),
		Extractor:    extractor,
		Transformer:  aptnotice.NewTransformer(),
		Converter:    htmltomarkdown.NewConverter(goquery.NewTableNormalizer()),
		Chunker:      goldmark.NewChunker(cfg.ChunkPolicy()),
		Index:        deps.Index,
		TokenCounter: counter,
		Logger:       logger,
	}
	return nil
}
