package client

// http_client.go = typed access to the animehub HTTP API for the CLI

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"animehub/internal/microservices/http-api/dto"
	"animehub/internal/microservices/http-api/models"
)

var (
	ErrUnauthorized = errors.New("not logged in or session expired")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
)

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// TokenStore persists the session between invocations
type TokenStore interface {
	Load() (accessToken, refreshToken string, err error)
	Save(accessToken, refreshToken string) error
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenStore
	token      string
	refresh    string
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: apiURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithTokens loads the stored session and lets the client rotate it on 401
func (c *HTTPClient) WithTokens(store TokenStore) *HTTPClient {
	c.tokens = store
	if store != nil {
		c.token, c.refresh, _ = store.Load()
	}
	return c
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) HasToken() bool {
	return c.token != ""
}

func (c *HTTPClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var result dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var result dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &result, false); err != nil {
		return nil, err
	}
	c.token, c.refresh = result.AccessToken, result.RefreshToken
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	if c.refresh == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", dto.RevokeTokenRequest{RefreshToken: c.refresh}, nil, false)
}

func (c *HTTPClient) Trending(ctx context.Context, page, perPage int) (*dto.PaginatedAnimeResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var result dto.PaginatedAnimeResponse
	if err := c.do(ctx, http.MethodGet, "/api/trending?"+q.Encode(), nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Anime(ctx context.Context, id int64) (*dto.AnimeDetailResponse, error) {
	var result dto.AnimeDetailResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/anime/%d", id), nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Membership(ctx context.Context, id int64) (*dto.MembershipResponse, error) {
	var result dto.MembershipResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/anime/%d/membership", id), nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) List(ctx context.Context, kind models.ListKind) (*dto.ListResponse, error) {
	var result dto.ListResponse
	if err := c.do(ctx, http.MethodGet, "/api/lists/"+string(kind), nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// InList reports whether animeID is in one list; anonymous callers always get false
func (c *HTTPClient) InList(ctx context.Context, kind models.ListKind, animeID int64) (bool, error) {
	var result struct {
		InList bool `json:"in_list"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/lists/%s/%d", kind, animeID), nil, &result, true); err != nil {
		return false, err
	}
	return result.InList, nil
}

func (c *HTTPClient) AddToList(ctx context.Context, kind models.ListKind, req dto.AddToListRequest) (*dto.ListEntryResponse, error) {
	var result dto.ListEntryResponse
	if err := c.do(ctx, http.MethodPost, "/api/lists/"+string(kind), req, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) RemoveFromList(ctx context.Context, kind models.ListKind, animeID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/lists/%s/%d", kind, animeID), nil, nil, true)
}

func (c *HTTPClient) Rate(ctx context.Context, animeID int64, rating int, notes *string) error {
	req := dto.UpdateRatingRequest{Rating: &rating, Notes: notes}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/lists/watched/%d", animeID), req, nil, true)
}

func (c *HTTPClient) Stats(ctx context.Context) (*models.AnimeStats, error) {
	var result models.AnimeStats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends one request; authenticated calls refresh the session once on 401
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	err := c.send(ctx, method, path, body, out, authed)
	if !authed || !errors.Is(err, ErrUnauthorized) || c.refresh == "" {
		return err
	}

	if rerr := c.refreshSession(ctx); rerr != nil {
		return err
	}
	return c.send(ctx, method, path, body, out, authed)
}

func (c *HTTPClient) refreshSession(ctx context.Context) error {
	var result dto.RefreshResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/refresh", dto.RefreshTokenRequest{RefreshToken: c.refresh}, &result, false); err != nil {
		return err
	}
	c.token, c.refresh = result.AccessToken, result.RefreshToken
	if c.tokens != nil {
		return c.tokens.Save(c.token, c.refresh)
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(response.Body, 4096)).Decode(&payload)
		if payload.Error == "" {
			payload.Error = response.Status
		}
		return &APIError{StatusCode: response.StatusCode, Message: payload.Error}
	}

	// optional-auth routes answer an expired token as anonymous and say so in the challenge
	if authed && c.refresh != "" && strings.Contains(response.Header.Get("WWW-Authenticate"), "invalid_token") {
		return &APIError{StatusCode: http.StatusUnauthorized, Message: "token has expired"}
	}

	if out == nil || response.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(out)
}
