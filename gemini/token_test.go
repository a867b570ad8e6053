package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/aptnotice/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
	require.NoError(t, err)

	t.Run("counts tokens in korean text", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "신혼부부 특별공급 신청 자격")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		shortCount, err := tc.CountTokens(ctx, "공급")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(ctx, "입주자모집공고일 현재 해당 주택건설지역에 거주하는 무주택세대구성원으로서 청약통장 가입기간 요건을 충족한 자")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "공급")

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewTokenCounter_UnknownModel(t *testing.T) {
	t.Parallel()

	_, err := gemini.NewTokenCounter("not-a-model")

	require.Error(t, err)
}
