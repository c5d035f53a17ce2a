package models

import (
	"time"

	"github.com/google/uuid"
)

// SearchEvent is one row of the append-only interaction log. An event carries
// either an item reference (the user opened or searched a concrete listing) or
// a raw free-text query, never neither. Events are never updated or deleted.
type SearchEvent struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ItemID    *uuid.UUID `json:"item_id,omitempty"`
	Query     *string    `json:"query,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// HasItem reports whether the event references a catalog item.
func (e SearchEvent) HasItem() bool {
	return e.ItemID != nil
}

// CreateSearchEventRequest is the payload for appending a search event.
type CreateSearchEventRequest struct {
	UserID uuid.UUID  `json:"user_id"`
	ItemID *uuid.UUID `json:"item_id,omitempty"`
	Query  *string    `json:"query,omitempty"`
}
