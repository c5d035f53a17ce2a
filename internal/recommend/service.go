package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/models"
	"github.com/renthive/recommender/internal/observability"
	"github.com/renthive/recommender/internal/repository"
)

const (
	algorithmHybrid = "hybrid"

	snapshotCacheName = "recommendation_snapshot"

	emptyResultMessage = "No recommendations available for this user."
)

// RecommendationService is the single entry point callers use. It gates the
// scoring pipeline behind the per-user snapshot cache: a lookup serves the
// stored ranking when the search-history fingerprint is unchanged and
// recomputes (content + collaborative + fusion) otherwise, overwriting the
// snapshot. There is no separate invalidate operation; staleness detection
// is the fingerprint comparison itself.
type RecommendationService struct {
	content       Scorer
	collaborative Scorer
	history       InteractionLog
	snapshots     SnapshotStore

	fingerprintQueryLimit int

	group   singleflight.Group
	metrics observability.CacheMetrics
	logger  *slog.Logger
	now     func() time.Time
}

// RecommendationServiceParams configures RecommendationService.
// Metrics may be nil (no cache metrics); FingerprintQueryLimit <= 0 falls
// back to DefaultFingerprintQueryLimit; Now may be nil (wall clock).
type RecommendationServiceParams struct {
	Content               Scorer
	Collaborative         Scorer
	History               InteractionLog
	Snapshots             SnapshotStore
	FingerprintQueryLimit int
	Metrics               observability.CacheMetrics
	Logger                *slog.Logger
	Now                   func() time.Time
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(p RecommendationServiceParams) *RecommendationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	limit := p.FingerprintQueryLimit
	if limit <= 0 {
		limit = DefaultFingerprintQueryLimit
	}

	return &RecommendationService{
		content:               p.Content,
		collaborative:         p.Collaborative,
		history:               p.History,
		snapshots:             p.Snapshots,
		fingerprintQueryLimit: limit,
		metrics:               p.Metrics,
		logger:                logger,
		now:                   now,
	}
}

// GetRecommendations returns the user's hybrid recommendation list, from the
// stored snapshot when its fingerprint still matches the user's current
// search-query set, recomputed otherwise. Only storage failures return an
// error; every signal-absence or scorer-degradation condition yields a
// successful response with an empty (and cached) list.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID) (models.RecommendationsResponse, error) {
	queries, err := s.history.RecentQueryTexts(ctx, userID, s.fingerprintQueryLimit)
	if err != nil {
		return models.RecommendationsResponse{}, fmt.Errorf("read search history: %w", err)
	}

	fingerprint := Fingerprint(queries)

	snap, err := s.snapshots.GetByUser(ctx, userID)

	switch {
	case err == nil && snap.Fingerprint == fingerprint:
		if s.metrics != nil {
			s.metrics.RecordHit(ctx, snapshotCacheName)
		}

		s.logger.DebugContext(ctx, "recommendations served from snapshot", "user_id", userID)

		return buildResponse(snap.Items), nil

	case err != nil && !errors.Is(err, repository.ErrSnapshotNotFound):
		return models.RecommendationsResponse{}, fmt.Errorf("read snapshot: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMiss(ctx, snapshotCacheName)
	}

	// Coalesce concurrent recomputes for the same user and history state.
	// Cross-process races stay possible and are harmless: the computation
	// is idempotent and every written snapshot is self-consistent.
	v, err, _ := s.group.Do(userID.String()+":"+fingerprint, func() (any, error) {
		return s.recompute(ctx, userID, fingerprint)
	})
	if err != nil {
		return models.RecommendationsResponse{}, err
	}

	return buildResponse(v.([]models.ScoredItem)), nil
}

// recompute runs both scorers, fuses their output, and overwrites the user's
// snapshot with the result and the fingerprint that produced it.
func (s *RecommendationService) recompute(ctx context.Context, userID uuid.UUID, fingerprint string) ([]models.ScoredItem, error) {
	contentResults := s.runScorer(ctx, "content", s.content, userID)
	collabResults := s.runScorer(ctx, "collaborative", s.collaborative, userID)

	items := MergeHybrid(contentResults, collabResults)

	snap := models.RecommendationSnapshot{
		UserID:      userID,
		Items:       items,
		Algorithm:   algorithmHybrid,
		Fingerprint: fingerprint,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.snapshots.Upsert(ctx, snap); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "recommendations recomputed",
		"user_id", userID,
		"content_results", len(contentResults),
		"collaborative_results", len(collabResults),
		"merged_results", len(items),
	)

	return items, nil
}

// runScorer isolates one scorer's failure modes: signal absence logs at
// debug, a degraded backend at warn, anything unexpected at error. All three
// collapse to an empty list so the other scorer still feeds the fusion.
func (s *RecommendationService) runScorer(ctx context.Context, name string, scorer Scorer, userID uuid.UUID) []models.ScoredItem {
	results, err := scorer.Score(ctx, userID)
	if err == nil {
		return results
	}

	switch {
	case errors.Is(err, apperrors.ErrNoSignal):
		s.logger.DebugContext(ctx, "scorer has no signal", "scorer", name, "user_id", userID, "reason", err.Error())
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		s.logger.WarnContext(ctx, "scorer backend unavailable", "scorer", name, "user_id", userID, "error", err)
	default:
		s.logger.ErrorContext(ctx, "scorer failed", "scorer", name, "user_id", userID, "error", err)
	}

	return nil
}

func buildResponse(items []models.ScoredItem) models.RecommendationsResponse {
	resp := models.RecommendationsResponse{
		Success:         true,
		Recommendations: items,
	}

	if resp.Recommendations == nil {
		resp.Recommendations = []models.ScoredItem{}
	}

	if len(resp.Recommendations) == 0 {
		resp.Message = emptyResultMessage
	}

	return resp
}
