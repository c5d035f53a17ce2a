// Package recommend implements the hybrid recommendation engine: content-based
// scoring over text embeddings, k-nearest-neighbor collaborative filtering,
// score fusion, and the fingerprint-gated snapshot cache in front of it all.
package recommend

import (
	"context"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/models"
)

// ItemCatalog provides the read-only snapshot of rentable items.
type ItemCatalog interface {
	// ListAll returns every item in stable catalog order.
	ListAll(ctx context.Context) ([]models.Item, error)
}

// UserDirectory provides read access to user interest tags.
type UserDirectory interface {
	GetInterests(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// InteractionLog provides read access to the append-only search event log.
type InteractionLog interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SearchEvent, error)
	ListAll(ctx context.Context) ([]models.SearchEvent, error)
	RecentQueryTexts(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
}

// SnapshotStore reads and upserts the one live recommendation snapshot per user.
type SnapshotStore interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (models.RecommendationSnapshot, error)
	Upsert(ctx context.Context, snap models.RecommendationSnapshot) error
}

// ItemEmbeddingStore persists item-text embeddings keyed by (item, model).
type ItemEmbeddingStore interface {
	GetByItemAndModel(ctx context.Context, itemID uuid.UUID, model string) ([]float32, error)
	ListByModel(ctx context.Context, model string) (map[uuid.UUID][]float32, error)
	Upsert(ctx context.Context, itemID uuid.UUID, model string, embedding []float32) error
}

// Scorer is one ranking source feeding the hybrid fusion.
type Scorer interface {
	// Score returns up to maxRecommendations items for the user, best first.
	// A NoSignalError means the scorer had nothing to work with; a
	// BackendUnavailableError means its backend is degraded. Both are
	// recovered by the caller, never surfaced to API clients.
	Score(ctx context.Context, userID uuid.UUID) ([]models.ScoredItem, error)
}

// maxRecommendations caps every ranked list the engine produces.
const maxRecommendations = 5
