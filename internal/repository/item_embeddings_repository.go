package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrItemEmbeddingNotFound is returned when no embedding row exists for the
// given item and model.
var ErrItemEmbeddingNotFound = errors.New("item embedding not found")

// ItemEmbeddingsRepository persists item-text embeddings keyed by
// (item_id, model) so catalog items are embedded once per model, not once
// per scoring run. Uses halfvec storage (2 bytes per dimension).
type ItemEmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewItemEmbeddingsRepository creates a new item embeddings repository.
func NewItemEmbeddingsRepository(db *pgxpool.Pool) *ItemEmbeddingsRepository {
	return &ItemEmbeddingsRepository{db: db}
}

// Upsert inserts or updates the embedding for (item_id, model).
func (r *ItemEmbeddingsRepository) Upsert(ctx context.Context, itemID uuid.UUID, model string, embedding []float32) error {
	vec := pgvector.NewHalfVector(embedding)
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO item_embeddings (item_id, embedding, model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id, model)
		DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = $5`,
		itemID, vec, model, now, now,
	)
	if err != nil {
		return fmt.Errorf("item embedding upsert: %w", err)
	}

	return nil
}

// GetByItemAndModel returns the stored embedding for the given item and model.
// Returns ErrItemEmbeddingNotFound when the item has not been embedded yet.
func (r *ItemEmbeddingsRepository) GetByItemAndModel(ctx context.Context, itemID uuid.UUID, model string) ([]float32, error) {
	var vec pgvector.HalfVector

	err := r.db.QueryRow(ctx,
		`SELECT embedding FROM item_embeddings WHERE item_id = $1 AND model = $2`,
		itemID, model,
	).Scan(&vec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemEmbeddingNotFound
		}

		return nil, fmt.Errorf("get item embedding: %w", err)
	}

	return vec.Slice(), nil
}

// ListByModel returns all stored embeddings for the given model keyed by item ID.
func (r *ItemEmbeddingsRepository) ListByModel(ctx context.Context, model string) (map[uuid.UUID][]float32, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, embedding FROM item_embeddings WHERE model = $1`,
		model,
	)
	if err != nil {
		return nil, fmt.Errorf("list item embeddings: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]float32)

	for rows.Next() {
		var (
			id  uuid.UUID
			vec pgvector.HalfVector
		)

		if err := rows.Scan(&id, &vec); err != nil {
			return nil, fmt.Errorf("scan item embedding: %w", err)
		}

		out[id] = vec.Slice()
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item embeddings: %w", err)
	}

	return out, nil
}
