package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"animehub/internal/microservices/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// uniqueViolation is the postgres SQLSTATE for a unique constraint conflict
const uniqueViolation = "23505"

// ErrDuplicateEntry reports a unique index conflict
var ErrDuplicateEntry = errors.New("duplicate entry")

// MembershipRepository performs user-scoped row operations on the three list tables.
// The (user_id, anime_id) unique index on each table is the authority for uniqueness.
type MembershipRepository interface {
	Insert(ctx context.Context, entry *models.ListEntry) error
	Delete(ctx context.Context, kind models.ListKind, userID string, animeID int64) error
	SelectAll(ctx context.Context, kind models.ListKind, userID string) ([]models.ListEntry, error)
	Exists(ctx context.Context, kind models.ListKind, userID string, animeID int64) (bool, error)
	Count(ctx context.Context, kind models.ListKind, userID string) (int64, error)
	// UpdateWatched writes rating and notes and reports how many rows matched
	UpdateWatched(ctx context.Context, userID string, animeID int64, rating *int, notes *string) (int64, error)
}

type membershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Insert(ctx context.Context, entry *models.ListEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	row := entry.Row()
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("insert into %s: %w", entry.Kind.Table(), err)
	}

	*entry = row.ToEntry()
	return nil
}

// Delete removes at most one row; zero matches is not an error
func (r *membershipRepository) Delete(ctx context.Context, kind models.ListKind, userID string, animeID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		Delete(kind.NewRow()).Error
	if err != nil {
		return fmt.Errorf("delete from %s: %w", kind.Table(), err)
	}
	return nil
}

func (r *membershipRepository) SelectAll(ctx context.Context, kind models.ListKind, userID string) ([]models.ListEntry, error) {
	db := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(kind.CreatedColumn() + " DESC").
		Order("id DESC")

	switch kind {
	case models.KindWatched:
		return findEntries[models.WatchedEntry](db, kind)
	case models.KindFavorites:
		return findEntries[models.FavoriteEntry](db, kind)
	default:
		return findEntries[models.WatchlistEntry](db, kind)
	}
}

func findEntries[R models.EntryRow](db *gorm.DB, kind models.ListKind) ([]models.ListEntry, error) {
	var rows []R
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Table(), err)
	}

	entries := make([]models.ListEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToEntry())
	}
	return entries, nil
}

func (r *membershipRepository) Exists(ctx context.Context, kind models.ListKind, userID string, animeID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(kind.NewRow()).
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s membership: %w", kind.Table(), err)
	}
	return count > 0, nil
}

func (r *membershipRepository) Count(ctx context.Context, kind models.ListKind, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(kind.NewRow()).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", kind.Table(), err)
	}
	return count, nil
}

func (r *membershipRepository) UpdateWatched(ctx context.Context, userID string, animeID int64, rating *int, notes *string) (int64, error) {
	// map form so nil values are written as NULL instead of skipped
	result := r.db.WithContext(ctx).
		Model(&models.WatchedEntry{}).
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		Updates(map[string]any{"rating": rating, "notes": notes})
	if result.Error != nil {
		return 0, fmt.Errorf("update watched rating: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// isUniqueViolation recognises the store's conflict code whether or not gorm translated it
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
