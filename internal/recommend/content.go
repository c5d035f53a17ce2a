package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/embeddings"
	"github.com/renthive/recommender/internal/models"
	"github.com/renthive/recommender/internal/repository"
	"github.com/renthive/recommender/pkg/cache"
	"github.com/renthive/recommender/pkg/vectormath"
)

// Content scoring weights: semantic similarity dominates, a linear 30-day
// recency term rewards items the user touched recently.
const (
	contentSimilarityWeight = 0.6
	contentRecencyWeight    = 0.4
	recencyWindowDays       = 30
)

// ContentScorer ranks catalog items by semantic similarity between the user's
// profile text (interest tags plus titles of items from their search history)
// and each item's text, blended with a recency term.
//
// Item embeddings are read from the persistent embedding store when one is
// configured; items missing there are embedded on demand and written back.
// The user-text embedding goes through an optional LRU so repeated requests
// for a user with unchanged history don't re-hit the embedding API.
type ContentScorer struct {
	catalog        ItemCatalog
	users          UserDirectory
	history        InteractionLog
	embedder       embeddings.Client
	itemEmbeddings ItemEmbeddingStore
	userTextCache  *cache.LoaderCache[string, []float32]
	model          string
	logger         *slog.Logger
	now            func() time.Time
}

var _ Scorer = (*ContentScorer)(nil)

// ContentScorerParams configures ContentScorer. ItemEmbeddings and
// UserTextCache may be nil (embeddings recomputed every run, no user-text
// caching). Now may be nil (wall clock).
type ContentScorerParams struct {
	Catalog        ItemCatalog
	Users          UserDirectory
	History        InteractionLog
	Embedder       embeddings.Client
	ItemEmbeddings ItemEmbeddingStore
	UserTextCache  *cache.LoaderCache[string, []float32]
	Model          string
	Logger         *slog.Logger
	Now            func() time.Time
}

// NewContentScorer creates a ContentScorer.
func NewContentScorer(p ContentScorerParams) *ContentScorer {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	return &ContentScorer{
		catalog:        p.Catalog,
		users:          p.Users,
		history:        p.History,
		embedder:       p.Embedder,
		itemEmbeddings: p.ItemEmbeddings,
		userTextCache:  p.UserTextCache,
		model:          p.Model,
		logger:         logger,
		now:            now,
	}
}

// Score implements Scorer. Signal absence (unknown user, no interests and no
// history, empty catalog) returns a NoSignalError; an unavailable embedding
// backend returns a BackendUnavailableError. Both leave the collaborative
// path free to answer alone.
func (s *ContentScorer) Score(ctx context.Context, userID uuid.UUID) ([]models.ScoredItem, error) {
	items, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if len(items) == 0 {
		return nil, apperrors.NewNoSignalError("item catalog is empty")
	}

	events, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list search events: %w", err)
	}

	userText := s.buildUserText(ctx, userID, events, items)
	if userText == "" {
		return nil, apperrors.NewNoSignalError("user has no interests or item search history")
	}

	userVec, err := s.embedUserText(ctx, userText)
	if err != nil {
		return nil, err
	}

	itemVecs, err := s.itemEmbeddingsFor(ctx, items)
	if err != nil {
		return nil, err
	}

	lastTouched := latestEventPerItem(events)
	nowT := s.now()

	scored := make([]models.ScoredItem, 0, len(items))

	for _, item := range items {
		similarity := vectormath.Cosine(userVec, itemVecs[item.ID])

		recency := 0.0
		if ts, ok := lastTouched[item.ID]; ok {
			ageDays := nowT.Sub(ts).Hours() / 24
			recency = max(0, 1-ageDays/recencyWindowDays)
		}

		scored = append(scored, models.ScoredItem{
			ID:          item.ID,
			Title:       item.Title,
			Category:    item.Category,
			Description: item.Description,
			Price:       item.Price,
			ImageURL:    item.ImageURL,
			FinalScore:  contentSimilarityWeight*similarity + contentRecencyWeight*recency,
		})
	}

	// Stable: ties keep catalog order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	return scored, nil
}

// buildUserText concatenates interest tags with deduplicated titles of items
// the user's search events reference. An unknown user contributes no
// interests; that alone is not an error.
func (s *ContentScorer) buildUserText(ctx context.Context, userID uuid.UUID, events []models.SearchEvent, items []models.Item) string {
	interests, err := s.users.GetInterests(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Warn("content: reading user interests failed, continuing with history only",
			"user_id", userID, "error", err)
	}

	titleByID := make(map[uuid.UUID]string, len(items))
	for _, it := range items {
		titleByID[it.ID] = it.Title
	}

	parts := make([]string, 0, len(interests)+len(events))
	parts = append(parts, interests...)

	seen := make(map[uuid.UUID]struct{})

	for _, e := range events {
		if !e.HasItem() {
			continue
		}

		if _, ok := seen[*e.ItemID]; ok {
			continue
		}

		seen[*e.ItemID] = struct{}{}

		if title := titleByID[*e.ItemID]; title != "" {
			parts = append(parts, title)
		}
	}

	return strings.TrimSpace(strings.Join(parts, " "))
}

func (s *ContentScorer) embedUserText(ctx context.Context, userText string) ([]float32, error) {
	embed := func(ctx context.Context, text string) ([]float32, error) {
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			if errors.Is(err, apperrors.ErrBackendUnavailable) {
				return nil, err
			}

			return nil, fmt.Errorf("embed user text: %w", err)
		}

		return vec, nil
	}

	if s.userTextCache == nil {
		return embed(ctx, userText)
	}

	return s.userTextCache.Get(ctx, userText, embed)
}

// itemEmbeddingsFor returns an embedding per item, reading the persistent
// store first and embedding only what is missing. Store failures degrade to
// on-the-fly computation; embedding failures are fatal to this scorer only.
func (s *ContentScorer) itemEmbeddingsFor(ctx context.Context, items []models.Item) (map[uuid.UUID][]float32, error) {
	stored := map[uuid.UUID][]float32{}

	if s.itemEmbeddings != nil {
		var err error

		stored, err = s.itemEmbeddings.ListByModel(ctx, s.model)
		if err != nil {
			s.logger.Warn("content: reading stored item embeddings failed, embedding full catalog",
				"model", s.model, "error", err)
			stored = map[uuid.UUID][]float32{}
		}
	}

	var (
		missingIDs   []uuid.UUID
		missingTexts []string
	)

	for _, item := range items {
		if _, ok := stored[item.ID]; ok {
			continue
		}

		text := strings.TrimSpace(item.CombinedText())
		if text == "" {
			// No text to embed; the item scores zero similarity.
			continue
		}

		missingIDs = append(missingIDs, item.ID)
		missingTexts = append(missingTexts, text)
	}

	if len(missingIDs) == 0 {
		return stored, nil
	}

	vecs, err := s.embedder.EmbedBatch(ctx, missingTexts)
	if err != nil {
		if errors.Is(err, apperrors.ErrBackendUnavailable) {
			return nil, err
		}

		return nil, fmt.Errorf("embed item texts: %w", err)
	}

	for i, id := range missingIDs {
		vectormath.NormalizeL2(vecs[i])
		stored[id] = vecs[i]

		if s.itemEmbeddings != nil {
			if err := s.itemEmbeddings.Upsert(ctx, id, s.model, vecs[i]); err != nil {
				s.logger.Warn("content: persisting item embedding failed", "item_id", id, "error", err)
			}
		}
	}

	return stored, nil
}

// latestEventPerItem maps each item to the timestamp of the user's most
// recent event touching it.
func latestEventPerItem(events []models.SearchEvent) map[uuid.UUID]time.Time {
	latest := make(map[uuid.UUID]time.Time)

	for _, e := range events {
		if !e.HasItem() {
			continue
		}

		if ts, ok := latest[*e.ItemID]; !ok || e.Timestamp.After(ts) {
			latest[*e.ItemID] = e.Timestamp
		}
	}

	return latest
}
