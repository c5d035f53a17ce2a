package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/models"
	"github.com/renthive/recommender/pkg/vectormath"
)

const (
	// Neighborhood size; effective k is min(maxNeighbors, users-1).
	maxNeighbors = 3

	// Linear 90-day decay with a floor so old interactions keep a little weight.
	decayWindowDays = 90
	decayFloor      = 0.1

	// Logarithmic boost for items multiple neighbors touched.
	popularityBoostFactor = 0.1

	// Final scores are remapped into [0.4, 0.9] via min-max plus a sigmoid.
	collabScoreFloor = 0.4
	collabScoreRange = 0.5
	sigmoidSteepness = 5.0
	sigmoidMidpoint  = 0.5
)

// CollaborativeScorer ranks items by what similar users searched: it builds a
// binary user-item matrix from item-referencing events, finds the target's
// nearest neighbors by cosine distance over matrix rows, and accumulates
// time-decayed, popularity-boosted scores over the neighbors' items the
// target has not touched.
type CollaborativeScorer struct {
	catalog ItemCatalog
	history InteractionLog
	logger  *slog.Logger
	now     func() time.Time
}

var _ Scorer = (*CollaborativeScorer)(nil)

// CollaborativeScorerParams configures CollaborativeScorer. Now may be nil
// (wall clock).
type CollaborativeScorerParams struct {
	Catalog ItemCatalog
	History InteractionLog
	Logger  *slog.Logger
	Now     func() time.Time
}

// NewCollaborativeScorer creates a CollaborativeScorer.
func NewCollaborativeScorer(p CollaborativeScorerParams) *CollaborativeScorer {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &CollaborativeScorer{
		catalog: p.Catalog,
		history: p.History,
		logger:  logger,
		now:     now,
	}
}

type neighbor struct {
	userID     uuid.UUID
	similarity float64
}

// Score implements Scorer. NoSignalError covers every expected empty case:
// the target has no item interactions, fewer than two users exist in the log,
// no neighbor has positive similarity, or the neighbors hold no items the
// target hasn't already touched.
func (s *CollaborativeScorer) Score(ctx context.Context, userID uuid.UUID) ([]models.ScoredItem, error) {
	events, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list search events: %w", err)
	}

	// Free-text-only queries carry no item signal for this matrix.
	itemEvents := make([]models.SearchEvent, 0, len(events))
	for _, e := range events {
		if e.HasItem() {
			itemEvents = append(itemEvents, e)
		}
	}

	interactions := buildInteractionSets(itemEvents)

	targetItems, ok := interactions[userID]
	if !ok {
		return nil, apperrors.NewNoSignalError("user has no recorded item interactions")
	}

	if len(interactions) < 2 {
		return nil, apperrors.NewNoSignalError("fewer than 2 users in the interaction log")
	}

	neighbors := s.nearestNeighbors(interactions, userID)
	if len(neighbors) == 0 {
		return nil, apperrors.NewNoSignalError("no usable neighbors")
	}

	similarityOf := make(map[uuid.UUID]float64, len(neighbors))
	for _, n := range neighbors {
		similarityOf[n.userID] = n.similarity
	}

	type candidate struct {
		raw   float64
		count int
	}

	candidates := make(map[uuid.UUID]*candidate)
	nowT := s.now()

	for _, e := range itemEvents {
		sim, isNeighbor := similarityOf[e.UserID]
		if !isNeighbor {
			continue
		}

		// Items the target already interacted with are never candidates.
		if _, seen := targetItems[*e.ItemID]; seen {
			continue
		}

		ageDays := nowT.Sub(e.Timestamp).Hours() / 24
		decay := max(decayFloor, 1-ageDays/decayWindowDays)

		c := candidates[*e.ItemID]
		if c == nil {
			c = &candidate{}
			candidates[*e.ItemID] = c
		}

		c.raw += sim * decay
		c.count++
	}

	if len(candidates) == 0 {
		return nil, apperrors.NewNoSignalError("neighbors hold no items new to the user")
	}

	for _, c := range candidates {
		c.raw *= 1 + popularityBoostFactor*math.Log(float64(c.count)+1)
	}

	// Deterministic ranking: raw score descending, item ID as tie-break.
	order := make([]rankedCandidate, 0, len(candidates))
	for id, c := range candidates {
		order = append(order, rankedCandidate{itemID: id, raw: c.raw})
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].raw != order[j].raw {
			return order[i].raw > order[j].raw
		}

		return order[i].itemID.String() < order[j].itemID.String()
	})

	finals := normalizeCollabScores(order)

	items, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	itemByID := make(map[uuid.UUID]models.Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	scored := make([]models.ScoredItem, 0, len(order))

	for i, r := range order {
		item, inCatalog := itemByID[r.itemID]
		if !inCatalog {
			// Event references an item since removed from the catalog.
			continue
		}

		scored = append(scored, models.ScoredItem{
			ID:          item.ID,
			Title:       item.Title,
			Category:    item.Category,
			Description: item.Description,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			FinalScore:  finals[i],
		})

		if len(scored) == maxRecommendations {
			break
		}
	}

	if len(scored) == 0 {
		return nil, apperrors.NewNoSignalError("candidate items no longer exist in the catalog")
	}

	return scored, nil
}

// nearestNeighbors returns up to maxNeighbors users by cosine similarity over
// binary interaction rows, keeping only strictly positive similarities.
func (s *CollaborativeScorer) nearestNeighbors(interactions map[uuid.UUID]map[uuid.UUID]struct{}, target uuid.UUID) []neighbor {
	itemIndex := buildItemIndex(interactions)
	targetRow := interactionRow(interactions[target], itemIndex)

	neighbors := make([]neighbor, 0, len(interactions)-1)

	for userID, items := range interactions {
		if userID == target {
			continue
		}

		sim := vectormath.CosineFloat64(targetRow, interactionRow(items, itemIndex))
		if sim <= 0 {
			continue
		}

		neighbors = append(neighbors, neighbor{userID: userID, similarity: sim})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}

		return neighbors[i].userID.String() < neighbors[j].userID.String()
	})

	k := min(maxNeighbors, len(interactions)-1)
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}

	return neighbors
}

type rankedCandidate struct {
	itemID uuid.UUID
	raw    float64
}

// normalizeCollabScores maps raw scores (given descending) into
// [collabScoreFloor, collabScoreFloor+collabScoreRange]. Min-max normalization
// followed by a sigmoid spreads mid-range scores apart; when every raw score
// is identical a position-based assignment keeps the output strictly ordered
// instead of collapsing to one value.
func normalizeCollabScores(order []rankedCandidate) []float64 {
	finals := make([]float64, len(order))
	if len(order) == 0 {
		return finals
	}

	maxRaw := order[0].raw
	minRaw := order[len(order)-1].raw
	rawRange := maxRaw - minRaw

	for i, r := range order {
		if rawRange > 0 {
			normalized := (r.raw - minRaw) / rawRange
			adjusted := 1 / (1 + math.Exp(-sigmoidSteepness*(normalized-sigmoidMidpoint)))
			finals[i] = collabScoreFloor + collabScoreRange*adjusted
		} else {
			positionFactor := 1 - float64(i)/float64(len(order))
			finals[i] = collabScoreFloor + collabScoreRange*positionFactor
		}
	}

	return finals
}

func buildInteractionSets(itemEvents []models.SearchEvent) map[uuid.UUID]map[uuid.UUID]struct{} {
	interactions := make(map[uuid.UUID]map[uuid.UUID]struct{})

	for _, e := range itemEvents {
		set := interactions[e.UserID]
		if set == nil {
			set = make(map[uuid.UUID]struct{})
			interactions[e.UserID] = set
		}

		set[*e.ItemID] = struct{}{}
	}

	return interactions
}

// buildItemIndex assigns every interacted item a stable column, sorted by ID
// so matrix construction is deterministic across runs.
func buildItemIndex(interactions map[uuid.UUID]map[uuid.UUID]struct{}) map[uuid.UUID]int {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]struct{})

	for _, items := range interactions {
		for id := range items {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	index := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	return index
}

func interactionRow(items map[uuid.UUID]struct{}, itemIndex map[uuid.UUID]int) []float64 {
	row := make([]float64, len(itemIndex))
	for id := range items {
		row[itemIndex[id]] = 1
	}

	return row
}
