package service

import (
	"context"
)

// Embedder produces a fixed-length vector for a piece of text. Chunk and
// query embeddings must come from the same Embedder to be comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator sends a composed prompt to a generation backend and returns the
// raw response text. Implementations hold the external client explicitly;
// there is no ambient global session.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
