// Package openai implements embedding, generation and token counting
// against the OpenAI API using the official Go SDK.
package openai

import (
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1/"

// NewClient creates an SDK client for apiKey. An empty baseURL selects
// DefaultBaseURL. SDK retries are disabled: rate limits and other errors
// surface to the caller on the first failure.
func NewClient(apiKey, baseURL string) *openaisdk.Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := openaisdk.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithMaxRetries(0),
	)
	return &client
}

// StatusCode returns the HTTP status of an API error, or 0 when err did not
// come from an API response.
func StatusCode(err error) int {
	var apiErr *openaisdk.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func wrap(op string, err error) error {
	return fmt.Errorf("openai %s: %w", op, err)
}
