package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultModel is used when no embedding model is configured.
const DefaultModel = "mistral-embed"

// Embedder turns text into vectors with one model, retrying on rate limits.
type Embedder struct {
	client *Client
	model  string
}

// NewEmbedder creates an Embedder. An empty model selects DefaultModel.
func NewEmbedder(client *Client, model string) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	return &Embedder{client: client, model: model}
}

// Model returns the configured model name.
func (e *Embedder) Model() string { return e.model }

// EmbedOne embeds a single text.
func (e *Embedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	var vector []float32

	operation := func() error {
		resp, err := e.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: []string{text},
			},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			if IsRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Data) != 1 {
			return backoff.Permanent(fmt.Errorf("expected 1 embedding, got %d", len(resp.Data)))
		}
		vector = toFloat32(resp.Data[0].Embedding)
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(NewBackOff(), ctx)); err != nil {
		return nil, fmt.Errorf("embed with %s: %w", e.model, err)
	}
	return vector, nil
}

// NewBackOff returns the retry schedule shared by API callers:
// 500ms initial interval, 10s max interval, 30s max elapsed.
func NewBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// IsRateLimitError reports whether err is an HTTP 429 from the API.
func IsRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
