package openai

import (
	"context"
	"fmt"

	"github.com/fwojciec/aptnotice"
	"github.com/pkoukk/tiktoken-go"
)

// Ensure TokenCounter implements aptnotice.TokenCounter at compile time.
var _ aptnotice.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts tokens with the BPE encoding of an OpenAI model.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// fallbackEncoding is used for models tiktoken does not map, such as the
// embedding models.
const fallbackEncoding = "cl100k_base"

// NewTokenCounter creates a TokenCounter for model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding for %s: %w", model, err)
	}
	return &TokenCounter{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(tc.enc.Encode(text, nil, nil)), nil
}
