package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/aptnotice"
	"github.com/fwojciec/aptnotice/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns vectors ordered by index", func(t *testing.T) {
		t.Parallel()

		var req map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/embeddings", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":1,"embedding":[0,1]},{"object":"embedding","index":0,"embedding":[1,0]}]}`))
		}))
		defer srv.Close()

		e := openai.NewEmbedder(openai.NewClient("sk-test", srv.URL), openai.DefaultEmbedModel)
		e.Dims = 2

		vectors, err := e.Embed(context.Background(), []string{"공급개요", "특별공급"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
		assert.Equal(t, openai.DefaultEmbedModel, req["model"])
		assert.InDelta(t, 2, req["dimensions"], 0)
		assert.Equal(t, []any{"공급개요", "특별공급"}, req["input"])
		assert.Equal(t, "float", req["encoding_format"])
	})

	t.Run("surfaces rate limits as quota errors", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
		}))
		defer srv.Close()

		e := openai.NewEmbedder(openai.NewClient("sk-test", srv.URL), openai.DefaultEmbedModel)

		_, err := e.Embed(context.Background(), []string{"a"})

		require.Error(t, err)
		assert.Equal(t, http.StatusTooManyRequests, openai.StatusCode(err))
		assert.True(t, aptnotice.IsQuotaExceeded(err))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("request errors are not dimension mismatches", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"This model does not support specifying dimensions.","type":"invalid_request_error"}}`))
		}))
		defer srv.Close()

		e := openai.NewEmbedder(openai.NewClient("sk-test", srv.URL), "text-embedding-ada-002")
		e.Dims = 768

		_, err := e.Embed(context.Background(), []string{"a"})

		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, openai.StatusCode(err))
		assert.False(t, aptnotice.IsDimensionMismatch(err))
	})

	t.Run("fails when the count does not match", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
		}))
		defer srv.Close()

		e := openai.NewEmbedder(openai.NewClient("sk-test", srv.URL), openai.DefaultEmbedModel)

		_, err := e.Embed(context.Background(), []string{"a", "b"})

		require.Error(t, err)
		assert.Equal(t, aptnotice.EINTERNAL, aptnotice.ErrorCode(err))
	})

	t.Run("fails on duplicate indexes", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]},{"index":0,"embedding":[2]}]}`))
		}))
		defer srv.Close()

		e := openai.NewEmbedder(openai.NewClient("sk-test", srv.URL), openai.DefaultEmbedModel)

		_, err := e.Embed(context.Background(), []string{"a", "b"})

		require.Error(t, err)
	})
}

func TestGenerator_Complete(t *testing.T) {
	t.Parallel()

	t.Run("sends system and user messages", func(t *testing.T) {
		t.Parallel()

		var req struct {
			Model               string   `json:"model"`
			Temperature         *float64 `json:"temperature"`
			MaxCompletionTokens int64    `json:"max_completion_tokens"`
			Messages            []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			_ = json.NewDecoder(r.Body).Decode(&req)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"chat.completion","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"계약은 3일간 진행됩니다."}}]}`))
		}))
		defer srv.Close()

		g := openai.NewGenerator(openai.NewClient("sk-test", srv.URL+"/"), openai.DefaultGenerateModel)

		text, err := g.Complete(context.Background(), aptnotice.Completion{
			System:          "공고문만 근거로 답하세요.",
			User:            "계약 기간은?",
			MaxOutputTokens: 1024,
		})

		require.NoError(t, err)
		assert.Equal(t, "계약은 3일간 진행됩니다.", text)
		assert.Equal(t, openai.DefaultGenerateModel, req.Model)
		require.NotNil(t, req.Temperature, "temperature 0 must be sent explicitly")
		assert.Zero(t, *req.Temperature)
		assert.Equal(t, int64(1024), req.MaxCompletionTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "계약 기간은?", req.Messages[1].Content)
	})

	t.Run("returns errors without retry", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
		}))
		defer srv.Close()

		g := openai.NewGenerator(openai.NewClient("sk-test", srv.URL), openai.DefaultGenerateModel)

		_, err := g.Complete(context.Background(), aptnotice.Completion{User: "q"})

		require.Error(t, err)
		assert.Equal(t, http.StatusTooManyRequests, openai.StatusCode(err))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("fails when no choices are returned", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		g := openai.NewGenerator(openai.NewClient("sk-test", srv.URL), openai.DefaultGenerateModel)

		_, err := g.Complete(context.Background(), aptnotice.Completion{User: "q"})

		require.Error(t, err)
		assert.Equal(t, aptnotice.EINTERNAL, aptnotice.ErrorCode(err))
	})

	t.Run("rejects an empty prompt", func(t *testing.T) {
		t.Parallel()

		g := openai.NewGenerator(openai.NewClient("sk-test", ""), openai.DefaultGenerateModel)

		_, err := g.Complete(context.Background(), aptnotice.Completion{})

		require.Error(t, err)
		assert.Equal(t, aptnotice.EINVALID, aptnotice.ErrorCode(err))
	})
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	assert.Zero(t, openai.StatusCode(errors.New("connection refused")))
	assert.Zero(t, openai.StatusCode(nil))
}
