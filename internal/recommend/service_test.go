package recommend

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthive/recommender/internal/apperrors"
	"github.com/renthive/recommender/internal/models"
)

type fakeMetrics struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (m *fakeMetrics) RecordHit(_ context.Context, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *fakeMetrics) RecordMiss(_ context.Context, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func newService(content, collab Scorer, history *fakeHistory, snaps *fakeSnapshots, metrics *fakeMetrics) *RecommendationService {
	params := RecommendationServiceParams{
		Content:       content,
		Collaborative: collab,
		History:       history,
		Snapshots:     snaps,
		Now:           func() time.Time { return testNow },
	}

	// Assign through the typed pointer only when set: a nil *fakeMetrics
	// stored in the interface field would not compare equal to nil.
	if metrics != nil {
		params.Metrics = metrics
	}

	return NewRecommendationService(params)
}

func TestServiceCachesByFingerprint(t *testing.T) {
	userID := uuid.New()
	item := scoredItem(uuid.New(), "DSLR Camera", 0.8)

	content := &stubScorer{items: []models.ScoredItem{item}}
	collab := &stubScorer{err: apperrors.NewNoSignalError("single user")}
	history := &fakeHistory{events: []models.SearchEvent{
		queryEvent(userID, "camera", testNow.AddDate(0, 0, -1)),
	}}
	snaps := newFakeSnapshots()
	metrics := &fakeMetrics{}

	svc := newService(content, collab, history, snaps, metrics)

	first, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, first.Success)
	require.Len(t, first.Recommendations, 1)
	assert.Equal(t, 1, content.calls)
	assert.Equal(t, 1, snaps.upserts)
	assert.Equal(t, 1, metrics.misses)

	snap, err := snaps.GetByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "hybrid", snap.Algorithm)
	assert.NotEmpty(t, snap.Fingerprint)

	// Unchanged history serves the snapshot without touching the scorers.
	second, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, first.Recommendations, second.Recommendations)
	assert.Equal(t, 1, content.calls)
	assert.Equal(t, 1, snaps.upserts)
	assert.Equal(t, 1, metrics.hits)
}

func TestServiceRecomputesOnNewQuery(t *testing.T) {
	userID := uuid.New()
	content := &stubScorer{items: []models.ScoredItem{scoredItem(uuid.New(), "DSLR Camera", 0.8)}}
	collab := &stubScorer{err: apperrors.NewNoSignalError("single user")}
	history := &fakeHistory{events: []models.SearchEvent{
		queryEvent(userID, "camera", testNow.AddDate(0, 0, -1)),
	}}
	snaps := newFakeSnapshots()

	svc := newService(content, collab, history, snaps, nil)

	_, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, content.calls)

	history.events = append(history.events, queryEvent(userID, "drone", testNow))

	_, err = svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 2, content.calls)
	assert.Equal(t, 2, snaps.upserts)
}

func TestServiceCachesEmptyResult(t *testing.T) {
	userID := uuid.New()
	content := &stubScorer{err: apperrors.NewNoSignalError("no interests")}
	collab := &stubScorer{err: apperrors.NewNoSignalError("no interactions")}
	history := &fakeHistory{}
	snaps := newFakeSnapshots()

	svc := newService(content, collab, history, snaps, nil)

	resp, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Recommendations)
	assert.Equal(t, emptyResultMessage, resp.Message)

	// The empty outcome is itself cached: no rescoring on the next lookup.
	_, err = svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, content.calls)
	assert.Equal(t, 1, collab.calls)
}

func TestServiceIsolatesScorerFailures(t *testing.T) {
	userID := uuid.New()
	item := scoredItem(uuid.New(), "Camera Drone", 0.7)

	content := &stubScorer{err: apperrors.NewBackendUnavailableError("embeddings", "no api key configured")}
	collab := &stubScorer{items: []models.ScoredItem{item}}

	svc := newService(content, collab, &fakeHistory{}, newFakeSnapshots(), nil)

	resp, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, item.ID, resp.Recommendations[0].ID)
}

func TestServiceIsolatesUnexpectedScorerError(t *testing.T) {
	userID := uuid.New()
	content := &stubScorer{err: fmt.Errorf("connection refused")}
	collab := &stubScorer{items: []models.ScoredItem{scoredItem(uuid.New(), "Camera Drone", 0.7)}}

	svc := newService(content, collab, &fakeHistory{}, newFakeSnapshots(), nil)

	resp, err := svc.GetRecommendations(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Recommendations, 1)
}

func TestServiceSurfacesSnapshotWriteFailure(t *testing.T) {
	userID := uuid.New()
	snaps := newFakeSnapshots()
	snaps.upsertErr = fmt.Errorf("connection refused")

	svc := newService(
		&stubScorer{items: []models.ScoredItem{scoredItem(uuid.New(), "DSLR Camera", 0.8)}},
		&stubScorer{err: apperrors.NewNoSignalError("single user")},
		&fakeHistory{}, snaps, nil,
	)

	_, err := svc.GetRecommendations(context.Background(), userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store snapshot")
}

func TestServiceSurfacesHistoryReadFailure(t *testing.T) {
	history := &fakeHistory{queriesErr: fmt.Errorf("connection refused")}

	svc := newService(&stubScorer{}, &stubScorer{}, history, newFakeSnapshots(), nil)

	_, err := svc.GetRecommendations(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read search history")
}

func TestServiceCoalescesConcurrentRecomputes(t *testing.T) {
	userID := uuid.New()

	block := make(chan struct{})
	content := &blockingScorer{release: block, items: []models.ScoredItem{scoredItem(uuid.New(), "DSLR Camera", 0.8)}}
	collab := &stubScorer{err: apperrors.NewNoSignalError("single user")}

	svc := newService(content, collab, &fakeHistory{}, newFakeSnapshots(), nil)

	const concurrency = 8

	var wg sync.WaitGroup

	for i := 0; i < concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := svc.GetRecommendations(context.Background(), userID)
			assert.NoError(t, err)
			assert.Len(t, resp.Recommendations, 1)
		}()
	}

	// Let every goroutine reach the flight before the scorer returns.
	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	assert.Equal(t, 1, content.callCount())
}

type blockingScorer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
	items   []models.ScoredItem
}

func (s *blockingScorer) Score(_ context.Context, _ uuid.UUID) ([]models.ScoredItem, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	<-s.release

	return s.items, nil
}

func (s *blockingScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}
