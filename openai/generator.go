package openai

import (
	"context"

	"github.com/fwojciec/aptnotice"
	openaisdk "github.com/openai/openai-go"
)

// DefaultGenerateModel is the model answers are generated with.
const DefaultGenerateModel = "gpt-4o-mini"

// Ensure Generator implements aptnotice.Generator at compile time.
var _ aptnotice.Generator = (*Generator)(nil)

// Generator implements aptnotice.Generator using chat completions. Errors,
// including rate limits, are returned without retry.
type Generator struct {
	client *openaisdk.Client
	model  string
}

// NewGenerator creates a Generator for model.
func NewGenerator(client *openaisdk.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

// Complete generates a reply to req.
func (g *Generator) Complete(ctx context.Context, req aptnotice.Completion) (string, error) {
	if req.User == "" {
		return "", aptnotice.Errorf(aptnotice.EINVALID, "prompt required")
	}

	var messages []openaisdk.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openaisdk.SystemMessage(req.System))
	}
	messages = append(messages, openaisdk.UserMessage(req.User))

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(g.model),
		Messages:    messages,
		Temperature: openaisdk.Float(float64(req.Temperature)),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(req.MaxOutputTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrap("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", aptnotice.Errorf(aptnotice.EINTERNAL, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
