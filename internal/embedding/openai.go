package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBatchSize is the number of texts sent per embeddings request, kept
// under the upstream payload limit.
const DefaultBatchSize = 30

// OpenAIProvider implements Provider using the OpenAI embeddings API.
type OpenAIProvider struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	batchSize int
}

// Option configures an OpenAIProvider.
type Option func(*OpenAIProvider)

// WithBatchSize overrides the request batch size.
func WithBatchSize(size int) Option {
	return func(p *OpenAIProvider) {
		if size > 0 {
			p.batchSize = size
		}
	}
}

// NewOpenAIProvider creates a provider backed by the given client and model.
func NewOpenAIProvider(client *openai.Client, model string, opts ...Option) *OpenAIProvider {
	p := &OpenAIProvider{
		client:    client,
		model:     openai.EmbeddingModel(model),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed computes one vector per text, batched, preserving input order.
// A failure embedding any batch fails the whole call so embeddings stay
// index-aligned with their articles.
func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		batch := texts[start:end]

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: p.model,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch starting at %d: %w", start, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(batch), len(resp.Data))
		}

		// The API is documented to return data in input order, but index is
		// authoritative when present.
		ordered := make([][]float32, len(batch))
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("embedding index %d out of range for batch of %d", d.Index, len(batch))
			}
			ordered[d.Index] = d.Embedding
		}
		vectors = append(vectors, ordered...)
	}

	return vectors, nil
}
