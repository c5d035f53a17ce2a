package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/renthive/recommender/pkg/vectormath"
)

// MockClient implements Client for tests. It produces deterministic hashed
// bag-of-words vectors: each lowercased token is hashed to a dimension and
// counted, then the vector is L2 normalized. Texts sharing words therefore
// get high cosine similarity, which lets ranking tests assert real orderings
// instead of comparing against random noise.
type MockClient struct {
	dimensions int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock embedding client with 256 dimensions.
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 256}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// Embed generates a deterministic embedding for the given text.
func (c *MockClient) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	return c.hashedBagOfWords(text), nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
// Returns an error if any text is empty.
func (c *MockClient) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("text at index %d cannot be empty", i)
		}

		vecs[i] = c.hashedBagOfWords(text)
	}

	return vecs, nil
}

func (c *MockClient) hashedBagOfWords(text string) []float32 {
	vec := make([]float32, c.dimensions)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[h.Sum32()%uint32(c.dimensions)]++
	}

	vectormath.NormalizeL2(vec)

	return vec
}
