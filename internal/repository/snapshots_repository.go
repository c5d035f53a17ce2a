package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renthive/recommender/internal/models"
)

// ErrSnapshotNotFound is returned when a user has no stored recommendation snapshot.
var ErrSnapshotNotFound = errors.New("recommendation snapshot not found")

// SnapshotsRepository stores at most one RecommendationSnapshot per user.
// Upsert overwrites; concurrent writers race safely because each snapshot is
// self-consistent (its fingerprint matches its own item list).
type SnapshotsRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotsRepository creates a new snapshots repository.
func NewSnapshotsRepository(db *pgxpool.Pool) *SnapshotsRepository {
	return &SnapshotsRepository{db: db}
}

// GetByUser returns the user's live snapshot, or ErrSnapshotNotFound.
func (r *SnapshotsRepository) GetByUser(ctx context.Context, userID uuid.UUID) (models.RecommendationSnapshot, error) {
	snap := models.RecommendationSnapshot{UserID: userID}

	var itemsJSON []byte

	err := r.db.QueryRow(ctx, `
		SELECT items, algorithm, fingerprint, created_at
		FROM recommendation_snapshots
		WHERE user_id = $1`,
		userID,
	).Scan(&itemsJSON, &snap.Algorithm, &snap.Fingerprint, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RecommendationSnapshot{}, ErrSnapshotNotFound
		}

		return models.RecommendationSnapshot{}, fmt.Errorf("get snapshot: %w", err)
	}

	if err := json.Unmarshal(itemsJSON, &snap.Items); err != nil {
		return models.RecommendationSnapshot{}, fmt.Errorf("decode snapshot items: %w", err)
	}

	return snap, nil
}

// Upsert stores the snapshot, replacing any previous one for the user.
func (r *SnapshotsRepository) Upsert(ctx context.Context, snap models.RecommendationSnapshot) error {
	items := snap.Items
	if items == nil {
		// An empty recommendation list is a valid, cacheable state.
		items = []models.ScoredItem{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode snapshot items: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO recommendation_snapshots (user_id, items, algorithm, fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET items = EXCLUDED.items, algorithm = EXCLUDED.algorithm,
		              fingerprint = EXCLUDED.fingerprint, created_at = EXCLUDED.created_at`,
		snap.UserID, itemsJSON, snap.Algorithm, snap.Fingerprint, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	return nil
}
