package recommend

import (
	"sort"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/models"
)

const (
	hybridContentWeight = 0.5
	hybridCollabWeight  = 0.5

	// Score assumed for an item one source never saw: neutral-low rather
	// than zero, so a strong single-source discovery isn't buried.
	hybridDefaultSideScore = 0.4
)

// MergeHybrid fuses the two ranked lists into one. Both lists are consumed
// as-is: scores carry each scorer's own range. Items present on only one
// side receive hybridDefaultSideScore on the other, which also covers a
// fully empty side: the surviving list keeps its items and order (the blend
// is monotonic) with scores shifted toward the default. Display attributes
// are backfilled from whichever side has them. Two empty lists merge to an
// empty result.
func MergeHybrid(content, collab []models.ScoredItem) []models.ScoredItem {
	if len(content) == 0 && len(collab) == 0 {
		return nil
	}

	contentByID := make(map[uuid.UUID]models.ScoredItem, len(content))
	for _, it := range content {
		contentByID[it.ID] = it
	}

	collabByID := make(map[uuid.UUID]models.ScoredItem, len(collab))
	for _, it := range collab {
		collabByID[it.ID] = it
	}

	// Union in deterministic order: content list first, then collab-only items.
	union := make([]uuid.UUID, 0, len(content)+len(collab))
	for _, it := range content {
		union = append(union, it.ID)
	}

	for _, it := range collab {
		if _, ok := contentByID[it.ID]; !ok {
			union = append(union, it.ID)
		}
	}

	merged := make([]models.ScoredItem, 0, len(union))

	for _, id := range union {
		contentScore := hybridDefaultSideScore
		collabScore := hybridDefaultSideScore

		var out models.ScoredItem

		if c, ok := contentByID[id]; ok {
			contentScore = c.FinalScore
			out = c
		}

		if cb, ok := collabByID[id]; ok {
			collabScore = cb.FinalScore

			if out.ID == uuid.Nil {
				out = cb
			} else {
				backfillAttributes(&out, cb)
			}
		}

		out.FinalScore = hybridContentWeight*contentScore + hybridCollabWeight*collabScore
		merged = append(merged, out)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].FinalScore > merged[j].FinalScore
	})

	return topN(merged)
}

// backfillAttributes fills display fields dst is missing from src.
func backfillAttributes(dst *models.ScoredItem, src models.ScoredItem) {
	if dst.Title == "" {
		dst.Title = src.Title
	}

	if dst.Category == "" {
		dst.Category = src.Category
	}

	if dst.Description == "" {
		dst.Description = src.Description
	}

	if dst.Price == 0 {
		dst.Price = src.Price
	}

	if dst.ImageURL == "" {
		dst.ImageURL = src.ImageURL
	}
}

func topN(items []models.ScoredItem) []models.ScoredItem {
	if len(items) > maxRecommendations {
		return items[:maxRecommendations]
	}

	return items
}
