package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Item is a read-only snapshot of a rentable listing at scoring time.
// The item catalog owns these rows; the recommender never mutates them.
type Item struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	SubCategory string    `json:"sub_category,omitempty"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// CombinedText returns the text used to embed an item: title, category, and
// description joined by single spaces. Missing fields contribute an empty
// string rather than being skipped, so the shape is stable across items.
func (i Item) CombinedText() string {
	return strings.Join([]string{i.Title, i.Category, i.Description}, " ")
}
