package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"animehub/internal/ingestion/anilist"
	"animehub/internal/microservices/http-api/models"
	"animehub/internal/microservices/http-api/repository"

	"golang.org/x/sync/errgroup"
)

const (
	MinRating = 1
	MaxRating = 10

	untitled = "Untitled"
)

var (
	ErrAlreadyInList = errors.New("anime already in list")
	ErrNotInList     = errors.New("anime not in list")
	ErrInvalidRating = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
)

// AddOptions carries the optional watched-only fields; other lists ignore them
type AddOptions struct {
	Rating *int
	Notes  *string
}

// MembershipService keeps the watchlist, watched and favorites lists of the
// current user. The lists are independent of each other.
type MembershipService interface {
	Add(ctx context.Context, kind models.ListKind, item anilist.MediaData, opts AddOptions) (*models.ListEntry, error)
	Remove(ctx context.Context, kind models.ListKind, animeID int64) error
	List(ctx context.Context, kind models.ListKind) ([]models.ListEntry, error)
	IsMember(ctx context.Context, kind models.ListKind, animeID int64) (bool, error)
	Membership(ctx context.Context, animeID int64) (map[models.ListKind]bool, error)
	UpdateRating(ctx context.Context, animeID int64, rating int, notes *string) error
	Stats(ctx context.Context) (models.AnimeStats, error)
}

type membershipService struct {
	repo               repository.MembershipRepository
	identity           IdentityResolver
	enforceRatingRange bool
	logger             *slog.Logger
}

type MembershipConfig struct {
	EnforceRatingRange bool
	Logger             *slog.Logger
}

func NewMembershipService(repo repository.MembershipRepository, identity IdentityResolver, cfg MembershipConfig) MembershipService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &membershipService{
		repo:               repo,
		identity:           identity,
		enforceRatingRange: cfg.EnforceRatingRange,
		logger:             cfg.Logger,
	}
}

// Add inserts a snapshot of item; a second add of the same item fails with ErrAlreadyInList
func (s *membershipService) Add(ctx context.Context, kind models.ListKind, item anilist.MediaData, opts AddOptions) (*models.ListEntry, error) {
	if !kind.Valid() {
		return nil, models.ErrUnknownListKind
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry := &models.ListEntry{
		Kind:     kind,
		UserID:   userID,
		AnimeID:  item.ID,
		Snapshot: SnapshotFromMedia(item),
	}
	if kind == models.KindWatched {
		if opts.Rating != nil {
			if err := s.validateRating(*opts.Rating); err != nil {
				return nil, err
			}
		}
		entry.Rating = opts.Rating
		entry.Notes = opts.Notes
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInList, kind.Label())
		}
		return nil, err
	}

	s.logger.Info("list_entry_added", "list", kind, "user_id", userID, "anime_id", item.ID)
	return entry, nil
}

// Remove is idempotent: removing an absent item succeeds
func (s *membershipService) Remove(ctx context.Context, kind models.ListKind, animeID int64) error {
	if !kind.Valid() {
		return models.ErrUnknownListKind
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, kind, userID, animeID); err != nil {
		return err
	}

	s.logger.Info("list_entry_removed", "list", kind, "user_id", userID, "anime_id", animeID)
	return nil
}

func (s *membershipService) List(ctx context.Context, kind models.ListKind) ([]models.ListEntry, error) {
	if !kind.Valid() {
		return nil, models.ErrUnknownListKind
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.SelectAll(ctx, kind, userID)
}

// IsMember is false for anonymous callers, who trivially have empty lists
func (s *membershipService) IsMember(ctx context.Context, kind models.ListKind, animeID int64) (bool, error) {
	if !kind.Valid() {
		return false, models.ErrUnknownListKind
	}
	userID, err := s.identity.CurrentUserID(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, kind, userID, animeID)
}

// Membership reports the item's state in every list at once
func (s *membershipService) Membership(ctx context.Context, animeID int64) (map[models.ListKind]bool, error) {
	result := make(map[models.ListKind]bool, len(models.AllKinds))
	for _, kind := range models.AllKinds {
		result[kind] = false
	}

	userID, err := s.identity.CurrentUserID(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	for _, kind := range models.AllKinds {
		member, err := s.repo.Exists(ctx, kind, userID, animeID)
		if err != nil {
			return nil, err
		}
		result[kind] = member
	}
	return result, nil
}

// UpdateRating changes rating and notes of an existing watched entry; it never creates one
func (s *membershipService) UpdateRating(ctx context.Context, animeID int64, rating int, notes *string) error {
	userID, err := s.identity.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if err := s.validateRating(rating); err != nil {
		return err
	}

	updated, err := s.repo.UpdateWatched(ctx, userID, animeID, &rating, notes)
	if err != nil {
		return err
	}
	if updated == 0 {
		return fmt.Errorf("%w: %s", ErrNotInList, models.KindWatched.Label())
	}

	s.logger.Info("watched_rating_updated", "user_id", userID, "anime_id", animeID, "rating", rating)
	return nil
}

// Stats counts all three lists with independent reads; anonymous callers get zeros
func (s *membershipService) Stats(ctx context.Context) (models.AnimeStats, error) {
	var stats models.AnimeStats

	userID, err := s.identity.CurrentUserID(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		return stats, nil
	}
	if err != nil {
		return stats, err
	}

	g, gctx := errgroup.WithContext(ctx)
	count := func(kind models.ListKind, dst *int64) {
		g.Go(func() error {
			n, err := s.repo.Count(gctx, kind, userID)
			*dst = n
			return err
		})
	}
	count(models.KindWatchlist, &stats.WatchlistCount)
	count(models.KindWatched, &stats.WatchedCount)
	count(models.KindFavorites, &stats.FavoritesCount)

	if err := g.Wait(); err != nil {
		return models.AnimeStats{}, err
	}
	return stats, nil
}

func (s *membershipService) validateRating(rating int) error {
	if s.enforceRatingRange && (rating < MinRating || rating > MaxRating) {
		return ErrInvalidRating
	}
	return nil
}

// SnapshotFromMedia copies the denormalized catalog fields, with defaults for missing ones
func SnapshotFromMedia(item anilist.MediaData) models.AnimeSnapshot {
	title := item.Title.Preferred()
	if title == "" {
		title = untitled
	}

	genres := make([]string, len(item.Genres))
	copy(genres, item.Genres)

	return models.AnimeSnapshot{
		SnapshotVersion: models.SnapshotVersion,
		Title:           title,
		CoverImage:      item.CoverImage.URL(),
		Description:     item.Description,
		Genres:          genres,
		Status:          item.Status,
		Episodes:        item.Episodes,
		Duration:        item.Duration,
	}
}
