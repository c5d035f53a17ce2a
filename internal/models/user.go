package models

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile holds the slice of a user the recommender reads: the free-form
// interest tags maintained by the user-management subsystem.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
}
