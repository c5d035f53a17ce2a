package recommend

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/renthive/recommender/internal/models"
	"github.com/renthive/recommender/internal/repository"
)

type fakeCatalog struct {
	items []models.Item
	err   error
}

func (f *fakeCatalog) ListAll(_ context.Context) ([]models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}

	return f.items, nil
}

type fakeUsers struct {
	interests map[uuid.UUID][]string
	err       error
}

func (f *fakeUsers) GetInterests(_ context.Context, userID uuid.UUID) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}

	interests, ok := f.interests[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return interests, nil
}

type fakeHistory struct {
	events     []models.SearchEvent
	listAllErr error
	queriesErr error
}

func (f *fakeHistory) ListByUser(_ context.Context, userID uuid.UUID) ([]models.SearchEvent, error) {
	var out []models.SearchEvent

	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}

	return out, nil
}

func (f *fakeHistory) ListAll(_ context.Context) ([]models.SearchEvent, error) {
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}

	return f.events, nil
}

func (f *fakeHistory) RecentQueryTexts(_ context.Context, userID uuid.UUID, limit int) ([]string, error) {
	if f.queriesErr != nil {
		return nil, f.queriesErr
	}

	var queries []string

	for _, e := range f.events {
		if e.UserID == userID && e.Query != nil {
			queries = append(queries, *e.Query)
		}

		if len(queries) == limit {
			break
		}
	}

	return queries, nil
}

type fakeSnapshots struct {
	mu        sync.Mutex
	snaps     map[uuid.UUID]models.RecommendationSnapshot
	getErr    error
	upsertErr error
	upserts   int
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snaps: make(map[uuid.UUID]models.RecommendationSnapshot)}
}

func (f *fakeSnapshots) GetByUser(_ context.Context, userID uuid.UUID) (models.RecommendationSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return models.RecommendationSnapshot{}, f.getErr
	}

	snap, ok := f.snaps[userID]
	if !ok {
		return models.RecommendationSnapshot{}, repository.ErrSnapshotNotFound
	}

	return snap, nil
}

func (f *fakeSnapshots) Upsert(_ context.Context, snap models.RecommendationSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}

	f.upserts++
	f.snaps[snap.UserID] = snap

	return nil
}

type fakeEmbeddingStore struct {
	mu      sync.Mutex
	vecs    map[uuid.UUID][]float32
	listErr error
	upserts int
}

func newFakeEmbeddingStore() *fakeEmbeddingStore {
	return &fakeEmbeddingStore{vecs: make(map[uuid.UUID][]float32)}
}

func (f *fakeEmbeddingStore) GetByItemAndModel(_ context.Context, itemID uuid.UUID, _ string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	vec, ok := f.vecs[itemID]
	if !ok {
		return nil, repository.ErrItemEmbeddingNotFound
	}

	return vec, nil
}

func (f *fakeEmbeddingStore) ListByModel(_ context.Context, _ string) (map[uuid.UUID][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make(map[uuid.UUID][]float32, len(f.vecs))
	for id, vec := range f.vecs {
		out[id] = vec
	}

	return out, nil
}

func (f *fakeEmbeddingStore) Upsert(_ context.Context, itemID uuid.UUID, _ string, embedding []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts++
	f.vecs[itemID] = embedding

	return nil
}

type stubScorer struct {
	mu    sync.Mutex
	items []models.ScoredItem
	err   error
	calls int
}

func (s *stubScorer) Score(_ context.Context, _ uuid.UUID) ([]models.ScoredItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.err != nil {
		return nil, s.err
	}

	return s.items, nil
}

func itemEvent(userID, itemID uuid.UUID, ts time.Time) models.SearchEvent {
	return models.SearchEvent{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		ItemID:    &itemID,
		Timestamp: ts,
	}
}

func queryEvent(userID uuid.UUID, query string, ts time.Time) models.SearchEvent {
	return models.SearchEvent{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    userID,
		Query:     &query,
		Timestamp: ts,
	}
}
