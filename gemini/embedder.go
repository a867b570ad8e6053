package gemini

import (
	"context"
	"time"

	"github.com/fwojciec/aptnotice"
	"google.golang.org/genai"
)

// DefaultEmbedModel is the model chunks and questions are embedded with.
const DefaultEmbedModel = "gemini-embedding-001"

// Ensure Embedder implements aptnotice.Embedder at compile time.
var _ aptnotice.Embedder = (*Embedder)(nil)

// Embedder implements aptnotice.Embedder using Google Gemini.
type Embedder struct {
	client *genai.Client
	model  string

	// Dims truncates embeddings to this width when positive.
	Dims int

	// Timeout bounds each call when positive.
	Timeout time.Duration
}

// NewEmbedder creates an Embedder for model.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// MaxBatchSize is the largest number of texts the API accepts in one
// batchEmbedContents call.
const MaxBatchSize = 100

// Embed returns one vector per text, in input order. Inputs larger than
// MaxBatchSize are sent as consecutive requests.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		batch, err := e.embed(ctx, texts[start:min(start+MaxBatchSize, len(texts))])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

// embed sends one request of at most MaxBatchSize texts.
func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	var config *genai.EmbedContentConfig
	if e.Dims > 0 {
		config = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(e.Dims))}
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, aptnotice.Errorf(aptnotice.EINTERNAL, "gemini returned %d embeddings for %d texts",
			embeddingCount(result), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil {
			return nil, aptnotice.Errorf(aptnotice.EINTERNAL, "gemini returned empty embedding at %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}
