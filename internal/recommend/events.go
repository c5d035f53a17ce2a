package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/models"
)

// EventAppender persists new search events.
type EventAppender interface {
	Append(ctx context.Context, req models.CreateSearchEventRequest) (models.SearchEvent, error)
}

// SearchEventsService validates and records search events. Recording never
// recomputes anything; the new event simply changes the fingerprint the next
// recommendation lookup computes.
type SearchEventsService struct {
	events EventAppender
	logger *slog.Logger
}

// NewSearchEventsService creates a SearchEventsService.
func NewSearchEventsService(events EventAppender, logger *slog.Logger) *SearchEventsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &SearchEventsService{events: events, logger: logger}
}

// Record validates and appends one search event. An event must name a user
// and carry either an item reference or a non-blank query text.
func (s *SearchEventsService) Record(ctx context.Context, req models.CreateSearchEventRequest) (models.SearchEvent, error) {
	if req.UserID == uuid.Nil {
		return models.SearchEvent{}, apperrors.NewValidationError("user_id", "user_id is required")
	}

	if req.ItemID == nil && (req.Query == nil || strings.TrimSpace(*req.Query) == "") {
		return models.SearchEvent{}, apperrors.NewValidationError("query", "either item_id or a non-empty query is required")
	}

	event, err := s.events.Append(ctx, req)
	if err != nil {
		return models.SearchEvent{}, fmt.Errorf("record search event: %w", err)
	}

	s.logger.DebugContext(ctx, "search event recorded",
		"event_id", event.ID,
		"user_id", event.UserID,
		"has_item", event.HasItem(),
	)

	return event, nil
}
