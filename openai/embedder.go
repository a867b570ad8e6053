package openai

import (
	"context"
	"time"

	"github.com/fwojciec/aptnotice"
	openaisdk "github.com/openai/openai-go"
)

// DefaultEmbedModel is the model chunks and questions are embedded with.
const DefaultEmbedModel = "text-embedding-3-small"

// Ensure Embedder implements aptnotice.Embedder at compile time.
var _ aptnotice.Embedder = (*Embedder)(nil)

// Embedder implements aptnotice.Embedder using the embeddings endpoint.
type Embedder struct {
	client *openaisdk.Client
	model  string

	// Dims requests shortened embeddings when positive.
	Dims int

	// Timeout bounds each call when positive.
	Timeout time.Duration
}

// NewEmbedder creates an Embedder for model.
func NewEmbedder(client *openaisdk.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// Embed returns one vector per text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	params := openaisdk.EmbeddingNewParams{
		Model:          openaisdk.EmbeddingModel(e.model),
		Input:          openaisdk.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		EncodingFormat: openaisdk.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.Dims > 0 {
		params.Dimensions = openaisdk.Int(int64(e.Dims))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, wrap("embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, aptnotice.Errorf(aptnotice.EINTERNAL, "openai returned %d embeddings for %d texts",
			len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(texts) || vectors[d.Index] != nil {
			return nil, aptnotice.Errorf(aptnotice.EINTERNAL, "openai returned invalid embedding index %d", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			v[i] = float32(x)
		}
		vectors[d.Index] = v
	}
	return vectors, nil
}
