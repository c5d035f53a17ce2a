package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/models"
)

// SearchEventsService defines the interface for recording search events.
type SearchEventsService interface {
	Record(ctx context.Context, req models.CreateSearchEventRequest) (models.SearchEvent, error)
}

// SearchEventsHandler handles HTTP requests for the search event log.
type SearchEventsHandler struct {
	service SearchEventsService
}

// NewSearchEventsHandler creates a new search events handler.
func NewSearchEventsHandler(service SearchEventsService) *SearchEventsHandler {
	return &SearchEventsHandler{service: service}
}

// Create handles POST /v1/search-events.
func (h *SearchEventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSearchEventRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			RespondError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				"request body exceeds maximum allowed size")

			return
		}

		RespondBadRequest(w, "Invalid request body")

		return
	}

	event, err := h.service.Record(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			RespondBadRequest(w, err.Error())

			return
		}

		slog.ErrorContext(r.Context(), "Failed to record search event", "error", err)
		RespondInternalServerError(w, "Failed to record search event")

		return
	}

	RespondJSON(w, http.StatusCreated, event)
}
