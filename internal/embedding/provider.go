// Package embedding computes vector representations of article text.
package embedding

import "context"

// Provider converts texts into fixed-length embedding vectors.
// Implementations must return exactly one vector per input text, in input
// order, or an error; partial results are never returned because callers
// rely on index alignment between texts and vectors.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
