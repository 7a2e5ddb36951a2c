package anilist

import (
	"html"
	"regexp"
	"strings"
	"time"
)

const (
	// Detail pages show a bounded cast and related list
	maxCharacters = 12
	maxRelations  = 6
)

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// pageResponse is the raw Page payload of the trending query
type pageResponse struct {
	Page struct {
		PageInfo PageInfo    `json:"pageInfo"`
		Media    []MediaData `json:"media"`
	} `json:"Page"`
}

// detailResponse wraps a single media record; Media is nil when AniList has no record
type detailResponse struct {
	Media *MediaDetail `json:"Media"`
}

// PageInfo contains pagination metadata
type PageInfo struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	HasNextPage bool `json:"hasNextPage"`
	PerPage     int  `json:"perPage"`
}

// TrendingPage is one page of trending anime, newest trend first
type TrendingPage struct {
	Items      []MediaData
	TotalCount int
	PageInfo   PageInfo
}

// MediaData is the catalog item shown on cards and copied into list snapshots
type MediaData struct {
	ID           int64      `json:"id"`
	Title        TitleData  `json:"title"`
	CoverImage   CoverImage `json:"coverImage"`
	Description  *string    `json:"description"`
	AverageScore *int       `json:"averageScore"` // 0-100
	Popularity   *int       `json:"popularity"`
	Genres       []string   `json:"genres"`
	Status       *string    `json:"status"` // FINISHED, RELEASING, NOT_YET_RELEASED, CANCELLED, HIATUS
	Episodes     *int       `json:"episodes"`
	Duration     *int       `json:"duration"` // minutes per episode
}

// MediaDetail is the extended record served on the show page
type MediaDetail struct {
	MediaData
	BannerImage *string       `json:"bannerImage"`
	Season      *string       `json:"season"`
	SeasonYear  *int          `json:"seasonYear"`
	Format      *string       `json:"format"`
	Source      *string       `json:"source"`
	Studios     StudioData    `json:"studios"`
	StartDate   FuzzyDate     `json:"startDate"`
	EndDate     FuzzyDate     `json:"endDate"`
	Characters  CharacterData `json:"characters"`
	Relations   RelationsData `json:"relations"`
}

// TitleData contains title variants
type TitleData struct {
	English *string `json:"english"`
	Romaji  *string `json:"romaji"`
	Native  *string `json:"native"`
}

// CoverImage contains cover URLs
type CoverImage struct {
	Large  *string `json:"large"`
	Medium *string `json:"medium"`
}

type StudioData struct {
	Nodes []Studio `json:"nodes"`
}

type Studio struct {
	Name string `json:"name"`
}

type CharacterData struct {
	Nodes []Character `json:"nodes"`
}

type Character struct {
	ID    int64 `json:"id"`
	Name  struct {
		Full string `json:"full"`
	} `json:"name"`
	Image struct {
		Medium *string `json:"medium"`
	} `json:"image"`
}

type RelationsData struct {
	Edges []RelationEdge `json:"edges"`
}

// RelationEdge links a related title (SEQUEL, PREQUEL, ADAPTATION, ...)
type RelationEdge struct {
	RelationType string `json:"relationType"`
	Node         struct {
		ID         int64      `json:"id"`
		Title      TitleData  `json:"title"`
		CoverImage CoverImage `json:"coverImage"`
		Type       string     `json:"type"`
	} `json:"node"`
}

// FuzzyDate represents a date with optional components
type FuzzyDate struct {
	Year  *int `json:"year"`
	Month *int `json:"month"`
	Day   *int `json:"day"`
}

// ============================================
// HELPER FUNCTIONS
// ============================================

// Preferred picks English, then Romaji, then Native; empty when none is set
func (t TitleData) Preferred() string {
	for _, v := range []*string{t.English, t.Romaji, t.Native} {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}

// URL prefers the large cover
func (c CoverImage) URL() *string {
	if c.Large != nil && *c.Large != "" {
		return c.Large
	}
	if c.Medium != nil && *c.Medium != "" {
		return c.Medium
	}
	return nil
}

// trim caps characters and relations at what the show page renders
func (d *MediaDetail) trim() {
	if len(d.Characters.Nodes) > maxCharacters {
		d.Characters.Nodes = d.Characters.Nodes[:maxCharacters]
	}
	if len(d.Relations.Edges) > maxRelations {
		d.Relations.Edges = d.Relations.Edges[:maxRelations]
	}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanDescription removes HTML tags and decodes entities
func CleanDescription(desc string) string {
	cleaned := tagPattern.ReplaceAllString(desc, "")
	cleaned = html.UnescapeString(cleaned)
	return strings.TrimSpace(cleaned)
}

// ToTime converts FuzzyDate to time.Time
func (fd *FuzzyDate) ToTime() *time.Time {
	if fd == nil || fd.Year == nil {
		return nil
	}

	year := *fd.Year
	month := 1
	day := 1

	if fd.Month != nil {
		month = *fd.Month
	}
	if fd.Day != nil {
		day = *fd.Day
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
