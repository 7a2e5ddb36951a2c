package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultAPIURL = "https://graphql.anilist.co"

	// AniList allows ~90 requests per minute
	defaultRateLimit = 1
	defaultRateBurst = 5

	// Upstream error bodies can be large HTML pages
	maxErrorBody = 512
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrItemNotFound       = errors.New("catalog item not found")
)

// StatusError is a non-2xx upstream response. It unwraps to ErrCatalogUnavailable.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anilist: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrCatalogUnavailable
}

// Options configures the client; zero values fall back to the AniList defaults
type Options struct {
	APIURL     string
	Timeout    time.Duration
	RatePerSec int
	Burst      int
	Logger     *slog.Logger
}

// AniListClient issues read-only GraphQL queries against the media catalog.
// Each call is a single request; callers own any retry policy.
type AniListClient struct {
	apiURL      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a new AniList API client
func NewClient(opts Options) *AniListClient {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = defaultRateLimit
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultRateBurst
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &AniListClient{
		apiURL:      opts.APIURL,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
		logger:      opts.Logger,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// GraphQLRequest represents a GraphQL query request
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a GraphQL error; AniList puts the HTTP-like status on each error
type GraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

const trendingQuery = `
query ($page: Int, $perPage: Int) {
	Page(page: $page, perPage: $perPage) {
		pageInfo {
			total
			currentPage
			lastPage
			hasNextPage
			perPage
		}
		media(sort: TRENDING_DESC, type: ANIME) {
			id
			title { romaji english native }
			coverImage { large medium }
			description
			averageScore
			popularity
			genres
			status
			episodes
			duration
		}
	}
}
`

const detailQuery = `
query ($id: Int) {
	Media(id: $id, type: ANIME) {
		id
		title { romaji english native }
		coverImage { large medium }
		bannerImage
		description
		averageScore
		popularity
		genres
		status
		episodes
		duration
		season
		seasonYear
		format
		source
		studios(isMain: true) { nodes { name } }
		startDate { year month day }
		endDate { year month day }
		characters(perPage: 12, sort: ROLE) {
			nodes {
				id
				name { full }
				image { medium }
			}
		}
		relations {
			edges {
				relationType
				node {
					id
					title { english romaji }
					coverImage { medium }
					type
				}
			}
		}
	}
}
`

// FetchTrendingPage fetches one page of anime sorted by trending score, descending
func (c *AniListClient) FetchTrendingPage(ctx context.Context, page, perPage int) (*TrendingPage, error) {
	variables := map[string]any{
		"page":    page,
		"perPage": perPage,
	}

	var result pageResponse
	if err := c.doRequest(ctx, trendingQuery, variables, &result); err != nil {
		return nil, fmt.Errorf("fetch trending page %d: %w", page, err)
	}

	items := result.Page.Media
	if items == nil {
		items = []MediaData{}
	}
	return &TrendingPage{
		Items:      items,
		TotalCount: result.Page.PageInfo.Total,
		PageInfo:   result.Page.PageInfo,
	}, nil
}

// FetchItemDetail fetches the extended record for a single anime
func (c *AniListClient) FetchItemDetail(ctx context.Context, id int64) (*MediaDetail, error) {
	variables := map[string]any{
		"id": id,
	}

	var result detailResponse
	err := c.doRequest(ctx, detailQuery, variables, &result)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("anime %d: %w", id, ErrItemNotFound)
		}
		return nil, fmt.Errorf("fetch anime %d: %w", id, err)
	}
	if result.Media == nil {
		return nil, fmt.Errorf("anime %d: %w", id, ErrItemNotFound)
	}

	result.Media.trim()
	return result.Media, nil
}

// doRequest performs a single rate-limited GraphQL request
func (c *AniListClient) doRequest(ctx context.Context, query string, variables map[string]any, result any) error {
	bodyJSON, err := json.Marshal(GraphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", ErrCatalogUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(bodyJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("anilist_request_failed", "error", err)
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrCatalogUnavailable, err)
	}

	c.logger.Debug("anilist_request",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := string(respBody)
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	var gqlResp GraphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("%w: failed to parse GraphQL response: %w", ErrCatalogUnavailable, err)
	}

	if len(gqlResp.Errors) > 0 {
		errMsgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			if e.Status == http.StatusNotFound {
				return &StatusError{StatusCode: http.StatusNotFound, Body: e.Message}
			}
			errMsgs[i] = e.Message
		}
		return fmt.Errorf("%w: GraphQL errors: %v", ErrCatalogUnavailable, errMsgs)
	}

	if err := json.Unmarshal(gqlResp.Data, result); err != nil {
		return fmt.Errorf("%w: failed to parse data: %w", ErrCatalogUnavailable, err)
	}

	return nil
}
