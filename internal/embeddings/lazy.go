package embeddings

import (
	"context"
	"sync"

	"github.com/renthive/recommender/internal/apperrors"
)

// LazyClient defers construction of the underlying embedding client until the
// first call and caches the outcome, including failure. A nil factory or a
// factory error puts the client into a permanent "unavailable" state in which
// every call returns a BackendUnavailableError; the content scorer treats
// that as a recoverable no-output condition rather than a hard error.
//
// This replaces loading the model eagerly at process start: a misconfigured
// or unreachable embedding backend must degrade content scoring, not prevent
// the service from booting.
type LazyClient struct {
	factory func() (Client, error)

	once   sync.Once
	client Client
	err    error
}

var _ Client = (*LazyClient)(nil)

// NewLazyClient wraps a client factory. factory may be nil when embeddings
// are not configured at all.
func NewLazyClient(factory func() (Client, error)) *LazyClient {
	return &LazyClient{factory: factory}
}

// Available reports whether the underlying client initialized successfully.
// Triggers initialization on first use.
func (c *LazyClient) Available() bool {
	return c.init() == nil
}

func (c *LazyClient) init() error {
	c.once.Do(func() {
		if c.factory == nil {
			c.err = apperrors.NewBackendUnavailableError("embedding", "embedding backend not configured")

			return
		}

		client, err := c.factory()
		if err != nil {
			c.err = apperrors.NewBackendUnavailableError("embedding", "embedding backend failed to initialize: "+err.Error())

			return
		}

		c.client = client
	})

	return c.err
}

// Embed generates an embedding via the lazily constructed client.
func (c *LazyClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	return c.client.Embed(ctx, text)
}

// EmbedBatch generates embeddings via the lazily constructed client.
func (c *LazyClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := c.init(); err != nil {
		return nil, err
	}

	return c.client.EmbedBatch(ctx, texts)
}
