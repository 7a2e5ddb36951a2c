package dto

import (
	"time"

	"animehub/internal/ingestion/anilist"
)

// AnimeCardResponse: the catalog fields shown on a grid card
type AnimeCardResponse struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	TitleRomaji  *string  `json:"title_romaji,omitempty"`
	TitleNative  *string  `json:"title_native,omitempty"`
	CoverImage   *string  `json:"cover_image"`
	Description  *string  `json:"description"`
	AverageScore *int     `json:"average_score"`
	Popularity   *int     `json:"popularity"`
	Genres       []string `json:"genres"`
	Status       *string  `json:"status"`
	Episodes     *int     `json:"episodes"`
	Duration     *int     `json:"duration"`
}

type CharacterResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type RelationResponse struct {
	ID           int64   `json:"id"`
	RelationType string  `json:"relation_type"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	CoverImage   *string `json:"cover_image"`
}

// AnimeDetailResponse: the show page payload
type AnimeDetailResponse struct {
	AnimeCardResponse
	DescriptionText string              `json:"description_text"`
	BannerImage     *string             `json:"banner_image"`
	Season          *string             `json:"season"`
	SeasonYear      *int                `json:"season_year"`
	Format          *string             `json:"format"`
	Source          *string             `json:"source"`
	Studios         []string            `json:"studios"`
	StartDate       *time.Time          `json:"start_date"`
	EndDate         *time.Time          `json:"end_date"`
	Characters      []CharacterResponse `json:"characters"`
	Relations       []RelationResponse  `json:"relations"`
}

// PaginatedAnimeResponse: one page of the trending catalog
type PaginatedAnimeResponse struct {
	Items       []AnimeCardResponse `json:"items"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
	Total       int                 `json:"total"`
	TotalPages  int                 `json:"total_pages"`
	HasNextPage bool                `json:"has_next_page"`
}

// TotalPages is ceil(total / perPage); zero when there is nothing to show
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	return totalPages
}

func FromMediaToCard(m anilist.MediaData) AnimeCardResponse {
	title := m.Title.Preferred()
	if title == "" {
		title = "Untitled"
	}
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return AnimeCardResponse{
		ID:           m.ID,
		Title:        title,
		TitleRomaji:  m.Title.Romaji,
		TitleNative:  m.Title.Native,
		CoverImage:   m.CoverImage.URL(),
		Description:  m.Description,
		AverageScore: m.AverageScore,
		Popularity:   m.Popularity,
		Genres:       genres,
		Status:       m.Status,
		Episodes:     m.Episodes,
		Duration:     m.Duration,
	}
}

// NewPaginatedAnimeResponse creates a paginated catalog response
func NewPaginatedAnimeResponse(page *anilist.TrendingPage, pageNum, perPage int) *PaginatedAnimeResponse {
	items := make([]AnimeCardResponse, 0, len(page.Items))
	for _, m := range page.Items {
		items = append(items, FromMediaToCard(m))
	}

	return &PaginatedAnimeResponse{
		Items:       items,
		Page:        pageNum,
		PerPage:     perPage,
		Total:       page.TotalCount,
		TotalPages:  TotalPages(page.TotalCount, perPage),
		HasNextPage: page.PageInfo.HasNextPage,
	}
}

func FromDetailToResponse(d *anilist.MediaDetail) AnimeDetailResponse {
	resp := AnimeDetailResponse{
		AnimeCardResponse: FromMediaToCard(d.MediaData),
		BannerImage:       d.BannerImage,
		Season:            d.Season,
		SeasonYear:        d.SeasonYear,
		Format:            d.Format,
		Source:            d.Source,
		StartDate:         d.StartDate.ToTime(),
		EndDate:           d.EndDate.ToTime(),
		Studios:           make([]string, 0, len(d.Studios.Nodes)),
		Characters:        make([]CharacterResponse, 0, len(d.Characters.Nodes)),
		Relations:         make([]RelationResponse, 0, len(d.Relations.Edges)),
	}
	if d.Description != nil {
		resp.DescriptionText = anilist.CleanDescription(*d.Description)
	}

	for _, s := range d.Studios.Nodes {
		resp.Studios = append(resp.Studios, s.Name)
	}
	for _, c := range d.Characters.Nodes {
		resp.Characters = append(resp.Characters, CharacterResponse{ID: c.ID, Name: c.Name.Full, Image: c.Image.Medium})
	}
	for _, e := range d.Relations.Edges {
		resp.Relations = append(resp.Relations, RelationResponse{
			ID:           e.Node.ID,
			RelationType: e.RelationType,
			Type:         e.Node.Type,
			Title:        e.Node.Title.Preferred(),
			CoverImage:   e.Node.CoverImage.URL(),
		})
	}
	return resp
}
