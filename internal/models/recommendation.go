package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoredItem is one ranked entry of a recommendation list. Ephemeral: produced
// per scoring run and persisted only inside a RecommendationSnapshot.
type ScoredItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	FinalScore  float64   `json:"final_score"`
}

// RecommendationSnapshot is the one live cached ranking per user. Fingerprint
// is the interaction-log fingerprint that produced Items; the two must always
// match, which is what makes fingerprint comparison a valid staleness check.
// Snapshots are overwritten on recomputation, never appended.
type RecommendationSnapshot struct {
	UserID      uuid.UUID    `json:"user_id"`
	Items       []ScoredItem `json:"items"`
	Algorithm   string       `json:"algorithm"`
	Fingerprint string       `json:"fingerprint"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RecommendationsResponse is the wire shape of GetRecommendations. An empty
// list with Success true is the normal cold-start answer, not an error.
type RecommendationsResponse struct {
	Success         bool         `json:"success"`
	Recommendations []ScoredItem `json:"recommendations"`
	Message         string       `json:"message,omitempty"`
}
