// Package embeddings defines the text-embedding backend the content scorer
// depends on, with an OpenAI implementation, a deterministic mock for tests,
// and a lazy wrapper that models the "backend unavailable" state explicitly.
package embeddings

import "context"

// Client generates dense vector embeddings for text.
type Client interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple texts in one call.
	// More efficient than calling Embed per text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
