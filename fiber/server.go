// Package fiber serves the announcement pipeline over HTTP using
// github.com/gofiber/fiber/v2.
package fiber

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/fwojciec/aptnotice"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// DefaultBodyLimit bounds request bodies, which may carry digitized HTML.
const DefaultBodyLimit = 16 << 20

// Server exposes ingestion and question answering.
type Server struct {
	app      *fiber.App
	ingester aptnotice.Ingester
	answerer aptnotice.Answerer
	validate *validator.Validate
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server and registers its routes.
func NewServer(ingester aptnotice.Ingester, answerer aptnotice.Answerer, opts ...Option) *Server {
	s := &Server{
		ingester: ingester,
		answerer: answerer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s.app = fiber.New(fiber.Config{
		AppName:               "aptnotice",
		BodyLimit:             DefaultBodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	check := s.app.Group("/check")
	check.Get("/healthy", s.handleHealthy)

	api := s.app.Group("/api")
	api.Post("/analyze", s.handleAnalyze)
	api.Post("/query", s.handleQuery)

	return s
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for active requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// Test dispatches req to the server without a network listener.
func (s *Server) Test(req *http.Request, timeout time.Duration) (*http.Response, error) {
	return s.app.Test(req, int(timeout.Milliseconds()))
}

// AnalyzeRequest asks for an announcement to be ingested. Exactly one of
// PDFPath and HTML is expected; PDFPath wins when both are set.
type AnalyzeRequest struct {
	DocID   string `json:"doc_id" validate:"required,max=200"`
	PDFPath string `json:"pdf_path" validate:"required_without=HTML"`
	HTML    string `json:"html"`
}

// AnalyzeResponse reports a completed ingestion.
type AnalyzeResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Result  *aptnotice.IngestResult `json:"result"`
}

// QueryRequest asks a question about one announcement.
type QueryRequest struct {
	DocID    string `json:"doc_id" validate:"required"`
	Question string `json:"question" validate:"max=2000"`
	Model    string `json:"model" validate:"omitempty,oneof=gemini openai"`
}

// QueryResponse carries the answer text and the backend that produced it.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Backend string   `json:"backend,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

// Source is a retrieved chunk shown alongside an answer.
type Source struct {
	Header1 string  `json:"header_1,omitempty"`
	Header2 string  `json:"header_2,omitempty"`
	Header3 string  `json:"header_3,omitempty"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

func (s *Server) handleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	var (
		result *aptnotice.IngestResult
		err    error
	)
	if req.PDFPath != "" {
		result, err = s.ingester.Ingest(c.UserContext(), req.PDFPath, req.DocID)
	} else {
		result, err = s.ingester.IngestHTML(c.UserContext(), req.HTML, req.DocID)
	}
	if err != nil {
		return err
	}

	message := "Analysis completed"
	if result.Skipped {
		message = "Already analyzed"
	}
	return c.JSON(AnalyzeResponse{Status: "success", Message: message, Result: result})
}

func (s *Server) handleQuery(c *fiber.Ctx) error {
	var req QueryRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	model, err := aptnotice.ParseModelChoice(req.Model)
	if err != nil {
		return err
	}

	answer := s.answerer.Answer(c.UserContext(), aptnotice.Question{
		DocID: req.DocID,
		Text:  req.Question,
		Model: model,
	})

	resp := QueryResponse{Answer: answer.Text, Backend: string(answer.Backend)}
	for _, r := range answer.Sources {
		if r.Chunk == nil {
			continue
		}
		resp.Sources = append(resp.Sources, Source{
			Header1: r.Chunk.Metadata.Header1,
			Header2: r.Chunk.Metadata.Header2,
			Header3: r.Chunk.Metadata.Header3,
			Content: r.Chunk.Content,
			Score:   r.Score,
		})
	}
	return c.JSON(resp)
}

// bind decodes the JSON body into v and validates its struct tags.
func (s *Server) bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON request")
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return newValidationError(verrs)
		}
		return err
	}
	return nil
}
