package aptnotice_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/stretchr/testify/assert"
)

func TestIsDimensionMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "collection signature", err: errors.New("Collection expecting embedding with dimension of 768, got 1536"), want: true},
		{name: "pgvector signature", err: errors.New("ERROR: expected 768 dimensions, not 1536 (SQLSTATE 22000)"), want: true},
		{name: "case insensitive", err: errors.New("COLLECTION EXPECTING EMBEDDING WITH DIMENSION of 3, got 2"), want: true},
		{name: "provider request error", err: errors.New(`POST "https://api.openai.com/v1/embeddings": 400 Bad Request "This model does not support specifying dimensions."`), want: false},
		{name: "gemini output dimensionality", err: errors.New("Error 400, Message: outputDimensionality must be positive"), want: false},
		{name: "unrelated", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, aptnotice.IsDimensionMismatch(tt.err))
		})
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "http status", err: errors.New("Error 429, Message: too many requests"), want: true},
		{name: "grpc status", err: errors.New("RESOURCE_EXHAUSTED"), want: true},
		{name: "quota wording", err: errors.New("You exceeded your current Quota"), want: true},
		{name: "auth failure", err: errors.New("401 unauthorized"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, aptnotice.IsQuotaExceeded(tt.err))
		})
	}
}
