package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renthive/recommender/internal/models"
)

type mockRecommendationsService struct {
	getFunc func(ctx context.Context, userID uuid.UUID) (models.RecommendationsResponse, error)
}

func (m *mockRecommendationsService) GetRecommendations(ctx context.Context, userID uuid.UUID) (models.RecommendationsResponse, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}

	return models.RecommendationsResponse{Success: true, Recommendations: []models.ScoredItem{}}, nil
}

func getRecommendations(handler *RecommendationsHandler, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://test/v1/users/"+id+"/recommendations", nil)
	req.SetPathValue("id", id)

	rec := httptest.NewRecorder()
	handler.Get(rec, req)

	return rec
}

func TestRecommendationsHandler_Get(t *testing.T) {
	t.Run("invalid user id returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationsService{})

		rec := getRecommendations(handler, "not-a-uuid")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success returns 200 with recommendations", func(t *testing.T) {
		userID := uuid.New()
		itemID := uuid.New()

		mock := &mockRecommendationsService{
			getFunc: func(_ context.Context, gotID uuid.UUID) (models.RecommendationsResponse, error) {
				assert.Equal(t, userID, gotID)

				return models.RecommendationsResponse{
					Success: true,
					Recommendations: []models.ScoredItem{
						{ID: itemID, Title: "DSLR Camera", FinalScore: 0.72},
					},
				}, nil
			},
		}

		rec := getRecommendations(NewRecommendationsHandler(mock), userID.String())

		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.RecommendationsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, itemID, resp.Recommendations[0].ID)
	})

	t.Run("empty result returns 200 with message", func(t *testing.T) {
		mock := &mockRecommendationsService{
			getFunc: func(_ context.Context, _ uuid.UUID) (models.RecommendationsResponse, error) {
				return models.RecommendationsResponse{
					Success:         true,
					Recommendations: []models.ScoredItem{},
					Message:         "No recommendations available for this user.",
				}, nil
			},
		}

		rec := getRecommendations(NewRecommendationsHandler(mock), uuid.New().String())

		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.RecommendationsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Recommendations)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		mock := &mockRecommendationsService{
			getFunc: func(_ context.Context, _ uuid.UUID) (models.RecommendationsResponse, error) {
				return models.RecommendationsResponse{}, fmt.Errorf("connection refused")
			},
		}

		rec := getRecommendations(NewRecommendationsHandler(mock), uuid.New().String())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
