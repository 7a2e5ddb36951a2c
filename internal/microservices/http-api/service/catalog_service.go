package service

import (
	"context"
	"errors"
	"log/slog"

	"animehub/internal/ingestion/anilist"
)

const (
	DefaultPerPage = 12
	MaxPerPage     = 50
)

// CatalogClient is the read-only remote anime catalog
type CatalogClient interface {
	FetchTrendingPage(ctx context.Context, page, perPage int) (*anilist.TrendingPage, error)
	FetchItemDetail(ctx context.Context, id int64) (*anilist.MediaDetail, error)
}

type CatalogService interface {
	Trending(ctx context.Context, page, perPage int) (*anilist.TrendingPage, int, int, error)
	Detail(ctx context.Context, id int64) (*anilist.MediaDetail, error)
}

type catalogService struct {
	client CatalogClient
	logger *slog.Logger
}

func NewCatalogService(client CatalogClient, logger *slog.Logger) CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{client: client, logger: logger}
}

// NormalizePage clamps page to >= 1 and perPage to [1, MaxPerPage], defaulting to DefaultPerPage
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Trending returns the page along with the normalized page and perPage that were requested
func (s *catalogService) Trending(ctx context.Context, page, perPage int) (*anilist.TrendingPage, int, int, error) {
	page, perPage = NormalizePage(page, perPage)

	result, err := s.client.FetchTrendingPage(ctx, page, perPage)
	if err != nil {
		s.logger.Warn("catalog_trending_failed", "page", page, "per_page", perPage, "error", err)
		return nil, page, perPage, err
	}
	return result, page, perPage, nil
}

func (s *catalogService) Detail(ctx context.Context, id int64) (*anilist.MediaDetail, error) {
	if id <= 0 {
		return nil, anilist.ErrItemNotFound
	}

	detail, err := s.client.FetchItemDetail(ctx, id)
	if err != nil {
		if !errors.Is(err, anilist.ErrItemNotFound) {
			s.logger.Warn("catalog_detail_failed", "anime_id", id, "error", err)
		}
		return nil, err
	}
	return detail, nil
}
