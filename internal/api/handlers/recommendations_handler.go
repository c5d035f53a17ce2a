package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/models"
)

// RecommendationsService defines the interface for fetching a user's
// recommendation list.
type RecommendationsService interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID) (models.RecommendationsResponse, error)
}

// RecommendationsHandler handles HTTP requests for user recommendations.
type RecommendationsHandler struct {
	service RecommendationsService
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(service RecommendationsService) *RecommendationsHandler {
	return &RecommendationsHandler{service: service}
}

// Get handles GET /v1/users/{id}/recommendations. An empty result is a 200
// with success true; only a storage failure produces a 500.
func (h *RecommendationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondBadRequest(w, "Invalid user ID")

		return
	}

	resp, err := h.service.GetRecommendations(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to get recommendations", "user_id", userID, "error", err)
		RespondInternalServerError(w, "Failed to get recommendations")

		return
	}

	RespondJSON(w, http.StatusOK, resp)
}
