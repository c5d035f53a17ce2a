package embeddings

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIClient implements Client using OpenAI's embedding API.
// Calls are rate limited so a full-catalog scoring run stays inside the
// account's requests-per-second budget.
type OpenAIClient struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	limiter *rate.Limiter
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates an OpenAI embedding client using
// text-embedding-3-small (1536 dimensions). requestsPerSecond caps outbound
// API calls; zero or negative disables the limiter.
// Panics if apiKey is empty.
func NewOpenAIClient(apiKey string, requestsPerSecond float64) *OpenAIClient {
	if apiKey == "" {
		panic("embeddings: OpenAI API key cannot be empty")
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &OpenAIClient{
		client:  openai.NewClient(apiKey),
		model:   openai.SmallEmbedding3,
		limiter: limiter,
	}
}

// NewOpenAIClientWithModel creates an OpenAI embedding client with a custom model.
func NewOpenAIClientWithModel(apiKey, model string, requestsPerSecond float64) *OpenAIClient {
	c := NewOpenAIClient(apiKey, requestsPerSecond)
	c.model = openai.EmbeddingModel(model)

	return c
}

// Model returns the embedding model identifier, used as the storage key for
// persisted item embeddings.
func (c *OpenAIClient) Model() string {
	return string(c.model)
}

// Embed generates an embedding vector for the given text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	return vecs[0], nil
}

// EmbedBatch generates embedding vectors for multiple texts in one API call.
// Returns an error if any text in the input is empty.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts cannot be empty")
	}

	for i, t := range texts {
		if t == "" {
			return nil, fmt.Errorf("text at index %d cannot be empty", i)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("unexpected number of embeddings returned: got %d, expected %d", len(resp.Data), len(texts))
	}

	vecs := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vecs[i] = data.Embedding
	}

	return vecs, nil
}
