package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renthive/recommender/internal/models"
)

// SearchHistoryRepository appends and reads the append-only interaction log.
// Rows are never updated or deleted here.
type SearchHistoryRepository struct {
	db *pgxpool.Pool
}

// NewSearchHistoryRepository creates a new search history repository.
func NewSearchHistoryRepository(db *pgxpool.Pool) *SearchHistoryRepository {
	return &SearchHistoryRepository{db: db}
}

// Append inserts one search event and returns it with ID and timestamp filled in.
func (r *SearchHistoryRepository) Append(ctx context.Context, req models.CreateSearchEventRequest) (models.SearchEvent, error) {
	event := models.SearchEvent{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    req.UserID,
		ItemID:    req.ItemID,
		Query:     req.Query,
		Timestamp: time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO search_events (id, user_id, item_id, query, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.UserID, event.ItemID, event.Query, event.Timestamp,
	)
	if err != nil {
		return models.SearchEvent{}, fmt.Errorf("append search event: %w", err)
	}

	return event, nil
}

// ListByUser returns all of a user's search events, most recent first.
func (r *SearchHistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SearchEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, item_id, query, created_at
		FROM search_events
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list search events by user: %w", err)
	}
	defer rows.Close()

	return scanSearchEvents(rows)
}

// ListAll returns every search event in the log, most recent first. The
// collaborative scorer builds its interaction matrix from this.
func (r *SearchHistoryRepository) ListAll(ctx context.Context) ([]models.SearchEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, item_id, query, created_at
		FROM search_events
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list search events: %w", err)
	}
	defer rows.Close()

	return scanSearchEvents(rows)
}

// RecentQueryTexts returns the raw free-text queries (item-less events only)
// of a user's most recent limit events, newest first. These feed the snapshot
// fingerprint.
func (r *SearchHistoryRepository) RecentQueryTexts(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT query
		FROM search_events
		WHERE user_id = $1 AND query IS NOT NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent query texts: %w", err)
	}
	defer rows.Close()

	var queries []string

	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("scan query text: %w", err)
		}

		queries = append(queries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query texts: %w", err)
	}

	return queries, nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSearchEvents(rows pgxRows) ([]models.SearchEvent, error) {
	var events []models.SearchEvent

	for rows.Next() {
		var e models.SearchEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.ItemID, &e.Query, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan search event: %w", err)
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search events: %w", err)
	}

	return events, nil
}
