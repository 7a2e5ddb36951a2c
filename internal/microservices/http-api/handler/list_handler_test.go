package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"animehub/internal/ingestion/anilist"
	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupListRouter(svc *MockMembershipService, catalog *MockCatalogService) *gin.Engine {
	router := setupRouter()
	NewListHandler(svc, catalog).RegisterRoutes(router.Group("/api"), fakeAuth(true), fakeAuth(false))
	return router
}

func doJSON(router *gin.Engine, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func cowboyBebop() *anilist.MediaDetail {
	title := "Cowboy Bebop"
	return &anilist.MediaDetail{MediaData: anilist.MediaData{
		ID:     1,
		Title:  anilist.TitleData{English: &title},
		Genres: []string{"Action", "Sci-Fi"},
	}}
}

func TestListHandler_Add(t *testing.T) {
	svc := new(MockMembershipService)
	catalog := new(MockCatalogService)
	router := setupListRouter(svc, catalog)

	item := cowboyBebop()
	entry := &models.ListEntry{
		Kind:      models.KindWatchlist,
		ID:        10,
		UserID:    "user-1",
		AnimeID:   1,
		Snapshot:  service.SnapshotFromMedia(item.MediaData),
		CreatedAt: time.Now().UTC(),
	}
	catalog.On("Detail", mock.Anything, int64(1)).Return(item, nil)
	svc.On("Add", mock.Anything, models.KindWatchlist, item.MediaData, service.AddOptions{}).Return(entry, nil)

	w := doJSON(router, "POST", "/api/lists/watchlist", "user-1", dto.AddToListRequest{AnimeID: 1})

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp dto.ListEntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Cowboy Bebop", resp.AnimeTitle)
	assert.Equal(t, "watchlist", resp.List)
	assert.NotNil(t, resp.AddedAt)
	svc.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestListHandler_AddErrors(t *testing.T) {
	tests := []struct {
		name       string
		catalogErr error
		addErr     error
		status     int
	}{
		{"duplicate", nil, fmt.Errorf("%w: favorites", service.ErrAlreadyInList), http.StatusConflict},
		{"invalid rating", nil, service.ErrInvalidRating, http.StatusBadRequest},
		{"unknown anime", anilist.ErrItemNotFound, nil, http.StatusNotFound},
		{"catalog down", fmt.Errorf("%w: status 503", anilist.ErrCatalogUnavailable), nil, http.StatusBadGateway},
		{"store down", nil, errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMembershipService)
			catalog := new(MockCatalogService)
			router := setupListRouter(svc, catalog)

			if tt.catalogErr != nil {
				catalog.On("Detail", mock.Anything, int64(1)).Return(nil, tt.catalogErr)
			} else {
				catalog.On("Detail", mock.Anything, int64(1)).Return(cowboyBebop(), nil)
				svc.On("Add", mock.Anything, models.KindFavorites, mock.Anything, mock.Anything).Return(nil, tt.addErr)
			}

			w := doJSON(router, "POST", "/api/lists/favorites", "user-1", dto.AddToListRequest{AnimeID: 1})

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestListHandler_AddValidation(t *testing.T) {
	svc := new(MockMembershipService)
	catalog := new(MockCatalogService)
	router := setupListRouter(svc, catalog)

	assert.Equal(t, http.StatusUnauthorized, doJSON(router, "POST", "/api/lists/watchlist", "", dto.AddToListRequest{AnimeID: 1}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/api/lists/backlog", "user-1", dto.AddToListRequest{AnimeID: 1}).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, "POST", "/api/lists/watchlist", "user-1", map[string]any{}).Code)

	catalog.AssertNotCalled(t, "Detail", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListHandler_List(t *testing.T) {
	svc := new(MockMembershipService)
	router := setupListRouter(svc, new(MockCatalogService))

	rating := 10
	entries := []models.ListEntry{
		{Kind: models.KindWatched, ID: 2, AnimeID: 5, Rating: &rating, Snapshot: models.AnimeSnapshot{Title: "Mushishi"}},
		{Kind: models.KindWatched, ID: 1, AnimeID: 1, Snapshot: models.AnimeSnapshot{Title: "Cowboy Bebop"}},
	}
	svc.On("List", mock.Anything, models.KindWatched).Return(entries, nil)

	w := doJSON(router, "GET", "/api/lists/watched", "user-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "Mushishi", resp.Items[0].AnimeTitle)
	assert.Equal(t, 10, *resp.Items[0].Rating)
}

func TestListHandler_Remove(t *testing.T) {
	svc := new(MockMembershipService)
	router := setupListRouter(svc, new(MockCatalogService))

	svc.On("Remove", mock.Anything, models.KindWatchlist, int64(21)).Return(nil)

	w := doJSON(router, "DELETE", "/api/lists/watchlist/21", "user-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, "DELETE", "/api/lists/watchlist/abc", "user-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestListHandler_IsMemberAnonymous(t *testing.T) {
	svc := new(MockMembershipService)
	router := setupListRouter(svc, new(MockCatalogService))

	svc.On("IsMember", mock.Anything, models.KindFavorites, int64(1)).Return(false, nil)

	w := doJSON(router, "GET", "/api/lists/favorites/1", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"list":"favorites","anime_id":1,"in_list":false}`, w.Body.String())
}

func TestListHandler_UpdateRating(t *testing.T) {
	svc := new(MockMembershipService)
	router := setupListRouter(svc, new(MockCatalogService))

	svc.On("UpdateRating", mock.Anything, int64(1), 8, (*string)(nil)).Return(nil)
	svc.On("UpdateRating", mock.Anything, int64(2), 8, (*string)(nil)).Return(fmt.Errorf("%w: watched list", service.ErrNotInList))

	w := doJSON(router, "PATCH", "/api/lists/watched/1", "user-1", map[string]any{"rating": 8})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "PATCH", "/api/lists/watched/2", "user-1", map[string]any{"rating": 8})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, "PATCH", "/api/lists/favorites/1", "user-1", map[string]any{"rating": 8})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, "PATCH", "/api/lists/watched/1", "user-1", map[string]any{"notes": "no rating"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestListHandler_MembershipAndStats(t *testing.T) {
	svc := new(MockMembershipService)
	router := setupListRouter(svc, new(MockCatalogService))

	svc.On("Membership", mock.Anything, int64(1)).Return(map[models.ListKind]bool{
		models.KindWatchlist: true,
		models.KindWatched:   false,
		models.KindFavorites: true,
	}, nil)
	svc.On("Stats", mock.Anything).Return(models.AnimeStats{WatchlistCount: 3, WatchedCount: 1}, nil)

	w := doJSON(router, "GET", "/api/anime/1/membership", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anime_id":1,"in_watchlist":true,"in_watched":false,"in_favorites":true}`, w.Body.String())

	w = doJSON(router, "GET", "/api/stats", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"watchlistCount":3,"watchedCount":1,"favoritesCount":0}`, w.Body.String())
}
