package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/aptnotice"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

// DefaultTokenizerModel is the newest model the local tokenizer supports.
const DefaultTokenizerModel = "gemini-2.5-flash"

// Ensure TokenCounter implements aptnotice.TokenCounter at compile time.
var _ aptnotice.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens offline with the Gemini sentencepiece model.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for model. The tokenizer model is
// downloaded on first use and cached.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer for %s: %w", model, err)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens returns the number of tokens text occupies as a user turn.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
