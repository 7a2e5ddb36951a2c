package anilist

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// fakeCatalog serves `total` trending items, ids 1..total, sliced by the page variables
func fakeCatalog(t *testing.T, total int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "TRENDING_DESC")

		page := int(req.Variables["page"].(float64))
		perPage := int(req.Variables["perPage"].(float64))

		media := []map[string]any{}
		for id := (page-1)*perPage + 1; id <= page*perPage && id <= total; id++ {
			media = append(media, map[string]any{
				"id":     id,
				"title":  map[string]any{"romaji": fmt.Sprintf("Show %d", id)},
				"genres": []string{"Action"},
			})
		}
		lastPage := (total + perPage - 1) / perPage

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"Page": map[string]any{
					"pageInfo": map[string]any{
						"total":       total,
						"currentPage": page,
						"lastPage":    lastPage,
						"hasNextPage": page < lastPage,
						"perPage":     perPage,
					},
					"media": media,
				},
			},
		})
	}))
}

func newTestClient(url string) *AniListClient {
	return NewClient(Options{APIURL: url, RatePerSec: 100, Burst: 100})
}

func TestFetchTrendingPage_SecondPage(t *testing.T) {
	srv := fakeCatalog(t, 40)
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchTrendingPage(t.Context(), 2, 12)

	require.NoError(t, err)
	require.Len(t, page.Items, 12)
	assert.Equal(t, int64(13), page.Items[0].ID)
	assert.Equal(t, int64(24), page.Items[11].ID)
	assert.Equal(t, 40, page.TotalCount)
	assert.True(t, page.PageInfo.HasNextPage)
}

func TestFetchTrendingPage_PastLastPageIsEmpty(t *testing.T) {
	srv := fakeCatalog(t, 5)
	defer srv.Close()

	page, err := newTestClient(srv.URL).FetchTrendingPage(t.Context(), 3, 12)

	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestFetchTrendingPage_ServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchTrendingPage(t.Context(), 1, 12)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 1, calls, "client must not retry")
}

func TestFetchTrendingPage_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).FetchTrendingPage(t.Context(), 1, 12)

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestFetchTrendingPage_GraphQLErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"Invalid query","status":400}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchTrendingPage(t.Context(), 1, 12)

	assert.ErrorIs(t, err, ErrCatalogUnavailable)
	assert.Contains(t, err.Error(), "Invalid query")
}

func TestFetchItemDetail_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(21), req.Variables["id"])

		var chars, rels []string
		for i := 1; i <= 20; i++ {
			chars = append(chars, fmt.Sprintf(`{"id":%d,"name":{"full":"Char %d"},"image":{"medium":null}}`, i, i))
			rels = append(rels, fmt.Sprintf(`{"relationType":"SEQUEL","node":{"id":%d,"title":{"romaji":"Rel"},"coverImage":{},"type":"ANIME"}}`, 100+i))
		}
		fmt.Fprintf(w, `{"data":{"Media":{
			"id":21,
			"title":{"romaji":"One Piece","english":null,"native":"ワンピース"},
			"coverImage":{"large":"https://img/large.jpg","medium":"https://img/medium.jpg"},
			"bannerImage":"https://img/banner.jpg",
			"description":"Pirates &amp; treasure<br>",
			"averageScore":88,
			"genres":["Action","Adventure"],
			"status":"RELEASING",
			"season":"FALL","seasonYear":1999,"format":"TV","source":"MANGA",
			"studios":{"nodes":[{"name":"Toei Animation"}]},
			"startDate":{"year":1999,"month":10,"day":20},
			"endDate":{"year":null,"month":null,"day":null},
			"characters":{"nodes":[%s]},
			"relations":{"edges":[%s]}
		}}}`, strings.Join(chars, ","), strings.Join(rels, ","))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).FetchItemDetail(t.Context(), 21)

	require.NoError(t, err)
	assert.Equal(t, int64(21), detail.ID)
	assert.Equal(t, "One Piece", detail.Title.Preferred())
	assert.Equal(t, "https://img/large.jpg", *detail.CoverImage.URL())
	assert.Equal(t, "Toei Animation", detail.Studios.Nodes[0].Name)
	assert.Len(t, detail.Characters.Nodes, maxCharacters)
	assert.Len(t, detail.Relations.Edges, maxRelations)
	assert.Nil(t, detail.Episodes)
	assert.Nil(t, detail.EndDate.ToTime())
	assert.Equal(t, 1999, detail.StartDate.ToTime().Year())
}

func TestFetchItemDetail_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{"HTTP404", http.StatusNotFound, `{"data":{"Media":null},"errors":[{"message":"Not Found.","status":404}]}`},
		{"NullMedia", http.StatusOK, `{"data":{"Media":null}}`},
		{"GraphQL404", http.StatusOK, `{"data":{"Media":null},"errors":[{"message":"Not Found.","status":404}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).FetchItemDetail(t.Context(), 999999)

			assert.ErrorIs(t, err, ErrItemNotFound)
		})
	}
}

func TestTitlePreferred(t *testing.T) {
	assert.Equal(t, "Attack on Titan", TitleData{English: strPtr("Attack on Titan"), Romaji: strPtr("Shingeki no Kyojin")}.Preferred())
	assert.Equal(t, "Shingeki no Kyojin", TitleData{English: strPtr(""), Romaji: strPtr("Shingeki no Kyojin")}.Preferred())
	assert.Equal(t, "進撃の巨人", TitleData{Native: strPtr("進撃の巨人")}.Preferred())
	assert.Equal(t, "", TitleData{}.Preferred())
}

func TestCleanDescription(t *testing.T) {
	assert.Equal(t, "Tom & Jerry\nagain", CleanDescription("  <b>Tom</b> &amp; Jerry<br>\nagain "))
}
