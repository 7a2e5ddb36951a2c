package dto

import (
	"time"

	"animehub/internal/microservices/http-api/models"
)

// AddToListRequest: payload to add an anime to one of the user's lists.
// The server fetches the catalog record itself; only the id is trusted from the client.
type AddToListRequest struct {
	AnimeID int64   `json:"anime_id" binding:"required,gt=0"`
	Rating  *int    `json:"rating,omitempty"`
	Notes   *string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// UpdateRatingRequest: payload for PATCH /api/lists/watched/:anime_id
type UpdateRatingRequest struct {
	Rating *int    `json:"rating" binding:"required"`
	Notes  *string `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// ListEntryResponse: one row of a list with its snapshot flattened
type ListEntryResponse struct {
	ID               int64      `json:"id"`
	List             string     `json:"list"`
	AnimeID          int64      `json:"anime_id"`
	AnimeTitle       string     `json:"anime_title"`
	AnimeCoverImage  *string    `json:"anime_cover_image"`
	AnimeDescription *string    `json:"anime_description"`
	AnimeGenres      []string   `json:"anime_genres"`
	AnimeStatus      *string    `json:"anime_status"`
	AnimeEpisodes    *int       `json:"anime_episodes"`
	AnimeDuration    *int       `json:"anime_duration"`
	SnapshotVersion  int        `json:"snapshot_version"`
	AddedAt          *time.Time `json:"added_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Rating           *int       `json:"rating,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// ListResponse: every entry of one list, newest first
type ListResponse struct {
	List  string              `json:"list"`
	Items []ListEntryResponse `json:"items"`
	Total int                 `json:"total"`
}

// MembershipResponse: where an anime sits across the three lists
type MembershipResponse struct {
	AnimeID     int64 `json:"anime_id"`
	InWatchlist bool  `json:"in_watchlist"`
	InWatched   bool  `json:"in_watched"`
	InFavorites bool  `json:"in_favorites"`
}

// FromEntryToResponse converts a list entry to its response DTO
func FromEntryToResponse(e models.ListEntry) ListEntryResponse {
	genres := []string(e.Snapshot.Genres)
	if genres == nil {
		genres = []string{}
	}

	resp := ListEntryResponse{
		ID:               e.ID,
		List:             string(e.Kind),
		AnimeID:          e.AnimeID,
		AnimeTitle:       e.Snapshot.Title,
		AnimeCoverImage:  e.Snapshot.CoverImage,
		AnimeDescription: e.Snapshot.Description,
		AnimeGenres:      genres,
		AnimeStatus:      e.Snapshot.Status,
		AnimeEpisodes:    e.Snapshot.Episodes,
		AnimeDuration:    e.Snapshot.Duration,
		SnapshotVersion:  e.Snapshot.SnapshotVersion,
	}

	created := e.CreatedAt
	if e.Kind == models.KindWatched {
		resp.CompletedAt = &created
		resp.Rating = e.Rating
		resp.Notes = e.Notes
	} else {
		resp.AddedAt = &created
	}
	return resp
}

func NewListResponse(kind models.ListKind, entries []models.ListEntry) ListResponse {
	items := make([]ListEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, FromEntryToResponse(e))
	}
	return ListResponse{List: string(kind), Items: items, Total: len(items)}
}

func NewMembershipResponse(animeID int64, in map[models.ListKind]bool) MembershipResponse {
	return MembershipResponse{
		AnimeID:     animeID,
		InWatchlist: in[models.KindWatchlist],
		InWatched:   in[models.KindWatched],
		InFavorites: in[models.KindFavorites],
	}
}
