package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Vector is a simple float32 slice wrapper.
type Vector []float32

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. This indicates a configuration or data bug, not a
// condition worth retrying.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder defines the embedding interface.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// CosineSimilarity returns the cosine similarity between a and b: the dot
// product divided by the product of the Euclidean norms. If either vector
// has zero norm the similarity is 0, not an error. Accumulation happens in
// float64 so identical vectors compare to 1.0 within tight tolerance.
func CosineSimilarity(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
