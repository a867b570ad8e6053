package aptnotice_test

import (
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelChoice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    aptnotice.ModelChoice
		wantErr bool
	}{
		{in: "", want: aptnotice.DefaultModelChoice},
		{in: "gemini", want: aptnotice.ModelGemini},
		{in: " OpenAI ", want: aptnotice.ModelOpenAI},
		{in: "claude", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := aptnotice.ParseModelChoice(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatGrounding(t *testing.T) {
	t.Parallel()

	results := []aptnotice.SearchResult{
		{Chunk: &aptnotice.Chunk{Content: "첫 번째\n"}, Score: 0.9},
		{Chunk: nil},
		{Chunk: &aptnotice.Chunk{Content: "두 번째"}, Score: 0.5},
	}

	assert.Equal(t, "첫 번째\n\n두 번째", aptnotice.FormatGrounding(results))
	assert.Empty(t, aptnotice.FormatGrounding(nil))
}
