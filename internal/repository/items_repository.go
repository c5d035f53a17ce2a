// Package repository contains pgx-backed data access for the item catalog,
// user directory, interaction log, snapshot store, and item-embedding store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renthive/recommender/internal/models"
)

// ItemsRepository reads the rentable item catalog. The recommender never
// writes to it.
type ItemsRepository struct {
	db *pgxpool.Pool
}

// NewItemsRepository creates a new items repository.
func NewItemsRepository(db *pgxpool.Pool) *ItemsRepository {
	return &ItemsRepository{db: db}
}

// ListAll returns every item in catalog order (created_at, id). Scorers rely
// on this ordering for stable tie-breaking.
func (r *ItemsRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, category, COALESCE(sub_category, ''), COALESCE(description, ''),
		       COALESCE(price, 0), COALESCE(image_url, ''), created_at
		FROM items
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("items list: %w", err)
	}
	defer rows.Close()

	var items []models.Item

	for rows.Next() {
		var it models.Item
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Category, &it.SubCategory, &it.Description,
			&it.Price, &it.ImageURL, &it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}
