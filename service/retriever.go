package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/deckwise/analyzer-be/types"
)

// Retriever selects the chunks most relevant to a section objective by
// cosine similarity between the query embedding and per-chunk embeddings.
type Retriever struct {
	embedder Embedder
	topK     int
}

func NewRetriever(embedder Embedder, topK int) (*Retriever, error) {
	if topK <= 0 {
		return nil, types.NewPipelineError(types.ErrInvalidConfiguration,
			fmt.Errorf("top-k must be positive, got %d", topK))
	}
	return &Retriever{embedder: embedder, topK: topK}, nil
}

// EmbedChunks computes each chunk's embedding once and caches it on the
// chunk, so multiple section queries against the same document reuse them.
func (r *Retriever) EmbedChunks(ctx context.Context, chunks []types.Chunk) error {
	for i := range chunks {
		if chunks[i].Embedding != nil {
			continue
		}
		vec, err := r.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return classifyModelError(err)
		}
		chunks[i].Embedding = vec
	}
	return nil
}

// Retrieve returns up to top-K chunks ranked by descending similarity to the
// query. Equal scores are broken by ascending sequence index, so ranking is
// deterministic. Chunk embeddings must be populated via EmbedChunks first.
func (r *Retriever) Retrieve(ctx context.Context, chunks []types.Chunk, query types.RetrievalQuery) ([]types.Chunk, error) {
	if len(chunks) == 0 {
		return nil, types.NewPipelineError(types.ErrEmptyCorpus,
			errors.New("no chunks to retrieve from"))
	}

	queryVec, err := r.embedder.Embed(ctx, query.Section)
	if err != nil {
		return nil, classifyModelError(err)
	}

	ranked := make([]types.Chunk, len(chunks))
	copy(ranked, chunks)
	for i := range ranked {
		ranked[i].Score = float64(cosineSimilarity(queryVec, ranked[i].Embedding))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})

	if len(ranked) > r.topK {
		ranked = ranked[:r.topK]
	}
	return ranked, nil
}

// cosineSimilarity calculates the cosine similarity between two embedding
// vectors. Mismatched or zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float32
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
