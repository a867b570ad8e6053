// Package gemini implements embedding, generation and token counting on
// Google Gemini through google.golang.org/genai.
package gemini

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/fwojciec/aptnotice"
	"google.golang.org/genai"
)

// DefaultGenerateModel is the model answers are generated with.
const DefaultGenerateModel = "gemini-2.5-flash"

// Ensure Generator implements aptnotice.Generator at compile time.
var _ aptnotice.Generator = (*Generator)(nil)

// Generator implements aptnotice.Generator using Google Gemini. Quota
// errors are retried, honoring the delay the API asks for when the error
// carries one.
type Generator struct {
	client *genai.Client
	model  string

	Retry aptnotice.RetryPolicy
}

// NewGenerator creates a Generator for model.
func NewGenerator(client *genai.Client, model string) *Generator {
	retry := aptnotice.QuotaRetryPolicy()
	retry.Hint = RetryHint
	return &Generator{client: client, model: model, Retry: retry}
}

// Complete generates a reply to req.
func (g *Generator) Complete(ctx context.Context, req aptnotice.Completion) (string, error) {
	if req.User == "" {
		return "", aptnotice.Errorf(aptnotice.EINVALID, "prompt required")
	}

	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
	config := BuildConfig(req)

	var text string
	err := g.Retry.Do(ctx, func(ctx context.Context) error {
		result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
		if err != nil {
			return err
		}
		if result == nil {
			return aptnotice.Errorf(aptnotice.EINTERNAL, "gemini returned nil result")
		}
		text = result.Text()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// BuildConfig returns the GenerateContentConfig for a completion.
func BuildConfig(req aptnotice.Completion) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if req.MaxOutputTokens > 0 {
		config.MaxOutputTokens = req.MaxOutputTokens
	}
	return config
}

var (
	retryInRe    = regexp.MustCompile(`(?i)retry in (\d+(?:\.\d+)?)s`)
	retryDelayRe = regexp.MustCompile(`retryDelay"?\s*:\s*"?(\d+(?:\.\d+)?)s`)
)

// RetryHint extracts the retry delay Gemini reports in quota errors, either
// as "Please retry in 12.5s." or as a RetryInfo detail "retryDelay": "12s".
func RetryHint(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	msg := err.Error()
	for _, re := range []*regexp.Regexp{retryInRe, retryDelayRe} {
		m := re.FindStringSubmatch(msg)
		if m == nil {
			continue
		}
		secs, perr := strconv.ParseFloat(m[1], 64)
		if perr != nil {
			continue
		}
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
}
