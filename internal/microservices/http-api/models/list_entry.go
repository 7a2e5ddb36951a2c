package models

import (
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
)

var ErrUnknownListKind = errors.New("unknown list kind")

// ListKind names one of the three independent per-user lists
type ListKind string

const (
	KindWatchlist ListKind = "watchlist"
	KindWatched   ListKind = "watched"
	KindFavorites ListKind = "favorites"
)

// AllKinds in display order
var AllKinds = []ListKind{KindWatchlist, KindWatched, KindFavorites}

func ParseListKind(s string) (ListKind, error) {
	switch k := ListKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindWatchlist, KindWatched, KindFavorites:
		return k, nil
	}
	return "", ErrUnknownListKind
}

// Valid is false for any value outside the three known lists
func (k ListKind) Valid() bool {
	switch k {
	case KindWatchlist, KindWatched, KindFavorites:
		return true
	}
	return false
}

// Table is the store table backing the list
func (k ListKind) Table() string {
	return string(k)
}

// CreatedColumn is the creation timestamp column; watched rows record completion instead
func (k ListKind) CreatedColumn() string {
	if k == KindWatched {
		return "completed_at"
	}
	return "added_at"
}

// Label is the human phrase used in messages ("already in watched list")
func (k ListKind) Label() string {
	switch k {
	case KindWatched:
		return "watched list"
	case KindFavorites:
		return "favorites"
	default:
		return "watchlist"
	}
}

// SnapshotVersion is bumped whenever the set of denormalized fields changes
const SnapshotVersion = 1

// AnimeSnapshot is the point-in-time copy of catalog fields stored with an entry.
// It is never refreshed from the catalog after insertion.
type AnimeSnapshot struct {
	SnapshotVersion int            `gorm:"column:snapshot_version;not null;default:1" json:"snapshot_version"`
	Title           string         `gorm:"column:anime_title;not null" json:"anime_title"`
	CoverImage      *string        `gorm:"column:anime_cover_image" json:"anime_cover_image"`
	Description     *string        `gorm:"column:anime_description" json:"anime_description"`
	Genres          pq.StringArray `gorm:"column:anime_genres;type:text[]" json:"anime_genres"`
	Status          *string        `gorm:"column:anime_status" json:"anime_status"`
	Episodes        *int           `gorm:"column:anime_episodes" json:"anime_episodes"`
	Duration        *int           `gorm:"column:anime_duration" json:"anime_duration"`
}

// WatchlistEntry is a row of the watchlist table
type WatchlistEntry struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_watchlist_user_anime,priority:1" json:"user_id"`
	AnimeID       int64     `gorm:"not null;uniqueIndex:idx_watchlist_user_anime,priority:2" json:"anime_id"`
	AnimeSnapshot `gorm:"embedded"`
	AddedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"added_at"`
}

func (WatchlistEntry) TableName() string {
	return "watchlist"
}

// WatchedEntry is a row of the watched table; rating and notes stay mutable
type WatchedEntry struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_watched_user_anime,priority:1" json:"user_id"`
	AnimeID       int64     `gorm:"not null;uniqueIndex:idx_watched_user_anime,priority:2" json:"anime_id"`
	AnimeSnapshot `gorm:"embedded"`
	CompletedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"completed_at"`
	Rating        *int      `json:"rating"`
	Notes         *string   `json:"notes"`
}

func (WatchedEntry) TableName() string {
	return "watched"
}

// FavoriteEntry is a row of the favorites table
type FavoriteEntry struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_anime,priority:1" json:"user_id"`
	AnimeID       int64     `gorm:"not null;uniqueIndex:idx_favorites_user_anime,priority:2" json:"anime_id"`
	AnimeSnapshot `gorm:"embedded"`
	AddedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"added_at"`
}

func (FavoriteEntry) TableName() string {
	return "favorites"
}

// ListEntry is the kind-agnostic view of a row in any of the three tables.
// Rating and Notes are only ever set for KindWatched.
type ListEntry struct {
	Kind      ListKind
	ID        int64
	UserID    string
	AnimeID   int64
	Snapshot  AnimeSnapshot
	CreatedAt time.Time
	Rating    *int
	Notes     *string
}

// EntryRow is implemented by the gorm model of each list table
type EntryRow interface {
	TableName() string
	ToEntry() ListEntry
}

// NewRow returns an empty model of the list's table, for scoped deletes and counts
func (k ListKind) NewRow() EntryRow {
	switch k {
	case KindWatched:
		return &WatchedEntry{}
	case KindFavorites:
		return &FavoriteEntry{}
	default:
		return &WatchlistEntry{}
	}
}

// Row converts the entry into the gorm model of its table
func (e ListEntry) Row() EntryRow {
	switch e.Kind {
	case KindWatched:
		return &WatchedEntry{
			ID: e.ID, UserID: e.UserID, AnimeID: e.AnimeID, AnimeSnapshot: e.Snapshot,
			CompletedAt: e.CreatedAt, Rating: e.Rating, Notes: e.Notes,
		}
	case KindFavorites:
		return &FavoriteEntry{
			ID: e.ID, UserID: e.UserID, AnimeID: e.AnimeID, AnimeSnapshot: e.Snapshot, AddedAt: e.CreatedAt,
		}
	default:
		return &WatchlistEntry{
			ID: e.ID, UserID: e.UserID, AnimeID: e.AnimeID, AnimeSnapshot: e.Snapshot, AddedAt: e.CreatedAt,
		}
	}
}

func (r WatchlistEntry) ToEntry() ListEntry {
	return ListEntry{
		Kind: KindWatchlist, ID: r.ID, UserID: r.UserID, AnimeID: r.AnimeID,
		Snapshot: r.AnimeSnapshot, CreatedAt: r.AddedAt,
	}
}

func (r WatchedEntry) ToEntry() ListEntry {
	return ListEntry{
		Kind: KindWatched, ID: r.ID, UserID: r.UserID, AnimeID: r.AnimeID,
		Snapshot: r.AnimeSnapshot, CreatedAt: r.CompletedAt, Rating: r.Rating, Notes: r.Notes,
	}
}

func (r FavoriteEntry) ToEntry() ListEntry {
	return ListEntry{
		Kind: KindFavorites, ID: r.ID, UserID: r.UserID, AnimeID: r.AnimeID,
		Snapshot: r.AnimeSnapshot, CreatedAt: r.AddedAt,
	}
}

// AnimeStats counts entries per list for one user. Derived on demand, never stored.
type AnimeStats struct {
	WatchlistCount int64 `json:"watchlistCount"`
	WatchedCount   int64 `json:"watchedCount"`
	FavoritesCount int64 `json:"favoritesCount"`
}
