// Package vectormath provides the small amount of dense-vector arithmetic the
// scorers need: L2 normalization and cosine similarity/distance.
package vectormath

import (
	"math"
)

// NormalizeL2 scales vector to unit length in place. A zero vector is left
// unchanged to avoid dividing by zero.
func NormalizeL2(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}

	if sumSquares == 0 {
		return
	}

	magnitude := math.Sqrt(sumSquares)
	for i := range vector {
		vector[i] = float32(float64(vector[i]) / magnitude)
	}
}

// Cosine returns the cosine similarity between a and b in [-1, 1].
// Returns 0 when either vector is zero or the dimensions differ; callers
// treat that as "no similarity signal".
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance returns 1 - Cosine(a, b), the metric nearest-neighbor search
// ranks by. Identical directions give 0, orthogonal vectors give 1.
func CosineDistance(a, b []float32) float64 {
	return 1 - Cosine(a, b)
}

// CosineFloat64 is Cosine over float64 slices, used for interaction-matrix rows.
func CosineFloat64(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
