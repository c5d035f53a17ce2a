package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthive/recommender/internal/apperrors"
)

func TestLazyClient(t *testing.T) {
	t.Run("nil factory is unavailable", func(t *testing.T) {
		c := NewLazyClient(nil)

		assert.False(t, c.Available())

		_, err := c.Embed(context.Background(), "laptop")
		assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
	})

	t.Run("factory error is unavailable and cached", func(t *testing.T) {
		calls := 0
		c := NewLazyClient(func() (Client, error) {
			calls++
			return nil, errors.New("model download failed")
		})

		_, err := c.Embed(context.Background(), "laptop")
		assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

		_, err = c.EmbedBatch(context.Background(), []string{"laptop"})
		assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)

		assert.Equal(t, 1, calls, "factory must run at most once")
	})

	t.Run("successful factory delegates", func(t *testing.T) {
		c := NewLazyClient(func() (Client, error) {
			return NewMockClientWithDimensions(32), nil
		})

		require.True(t, c.Available())

		vec, err := c.Embed(context.Background(), "tent camping gear")
		require.NoError(t, err)
		assert.Len(t, vec, 32)

		vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, vecs, 2)
	})
}

func TestMockClient_SimilarTextsScoreHigher(t *testing.T) {
	c := NewMockClient()
	ctx := context.Background()

	user, err := c.Embed(ctx, "electronics gaming laptop")
	require.NoError(t, err)

	laptop, err := c.Embed(ctx, "Gaming Laptop Electronics high end laptop")
	require.NoError(t, err)

	dress, err := c.Embed(ctx, "Designer Dress Fashion evening wear")
	require.NoError(t, err)

	var simLaptop, simDress float64
	for i := range user {
		simLaptop += float64(user[i]) * float64(laptop[i])
		simDress += float64(user[i]) * float64(dress[i])
	}

	assert.Greater(t, simLaptop, simDress)
}

func TestMockClient_Deterministic(t *testing.T) {
	c := NewMockClient()

	a, err := c.Embed(context.Background(), "kayak paddle")
	require.NoError(t, err)

	b, err := c.Embed(context.Background(), "kayak paddle")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
