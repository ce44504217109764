package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tfkr-ae/launchbook/domain"
)

var _ domain.FavoritesStore = (*Repository)(nil)

// dbFavorite represents a favorite launch as stored in the database.
type dbFavorite struct {
	ID           string         `db:"launch_id"`     // Launch identifier, primary key.
	Site         sql.NullString `db:"site"`          // Launch site name.
	MissionName  sql.NullString `db:"mission_name"`  // Mission name.
	MissionPatch sql.NullString `db:"mission_patch"` // Mission patch image URL.
	RocketName   sql.NullString `db:"rocket_name"`   // Rocket name.
	RocketType   sql.NullString `db:"rocket_type"`   // Rocket type.
	IsFavorite   bool           `db:"is_favorite"`   // Always true while the row exists.
	AddedAt      int64          `db:"added_at"`      // Unix milliseconds.
}

const favoriteColumns = `launch_id, site, mission_name, mission_patch, rocket_name, rocket_type, is_favorite, added_at`

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// toDomainFavorite converts a dbFavorite to a domain.FavoriteRecord.
func toDomainFavorite(dbFavorite *dbFavorite) *domain.FavoriteRecord {
	return &domain.FavoriteRecord{
		ID:           dbFavorite.ID,
		Site:         dbFavorite.Site.String,
		MissionName:  dbFavorite.MissionName.String,
		MissionPatch: dbFavorite.MissionPatch.String,
		RocketName:   dbFavorite.RocketName.String,
		RocketType:   dbFavorite.RocketType.String,
		IsFavorite:   dbFavorite.IsFavorite,
		AddedAt:      time.UnixMilli(dbFavorite.AddedAt),
	}
}

// fromDomainFavorite converts a domain.FavoriteRecord to a dbFavorite.
// A zero AddedAt is replaced with the current time.
func fromDomainFavorite(record *domain.FavoriteRecord) *dbFavorite {
	addedAt := record.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}
	return &dbFavorite{
		ID:           record.ID,
		Site:         nullString(record.Site),
		MissionName:  nullString(record.MissionName),
		MissionPatch: nullString(record.MissionPatch),
		RocketName:   nullString(record.RocketName),
		RocketType:   nullString(record.RocketType),
		IsFavorite:   true,
		AddedAt:      addedAt.UnixMilli(),
	}
}

func (repo *Repository) listFavorites(ctx context.Context) ([]*domain.FavoriteRecord, error) {
	var dbFavorites []*dbFavorite
	query := `SELECT ` + favoriteColumns + ` FROM favorite_launches ORDER BY added_at DESC, rowid DESC`

	err := repo.dbConn.SelectContext(ctx, &dbFavorites, query)
	if err != nil {
		return nil, fmt.Errorf("getting favorites: %w", err)
	}

	records := make([]*domain.FavoriteRecord, len(dbFavorites))
	for i, dbFavorite := range dbFavorites {
		records[i] = toDomainFavorite(dbFavorite)
	}
	return records, nil
}

func (repo *Repository) isFavorite(ctx context.Context, launchID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM favorite_launches WHERE launch_id = ?)`

	err := repo.dbConn.GetContext(ctx, &exists, query, launchID)
	if err != nil {
		return false, fmt.Errorf("checking favorite %s: %w", launchID, err)
	}
	return exists, nil
}

// WatchFavorites emits all favorites, newest first, after every committed change.
func (repo *Repository) WatchFavorites(ctx context.Context) (<-chan []*domain.FavoriteRecord, error) {
	return watch(ctx, repo, "favorites", repo.listFavorites)
}

// WatchIsFavorite emits whether the launch is a favorite after every committed change.
func (repo *Repository) WatchIsFavorite(ctx context.Context, launchID string) (<-chan bool, error) {
	return watch(ctx, repo, "is favorite", func(ctx context.Context) (bool, error) {
		return repo.isFavorite(ctx, launchID)
	})
}

// WatchFavoritesCount emits the number of favorites after every committed change.
func (repo *Repository) WatchFavoritesCount(ctx context.Context) (<-chan int, error) {
	return watch(ctx, repo, "favorites count", repo.CountFavorites)
}

// GetFavoriteByID retrieves a single favorite by launch id.
func (repo *Repository) GetFavoriteByID(ctx context.Context, launchID string) (*domain.FavoriteRecord, error) {
	var dbFavorite dbFavorite
	query := `SELECT ` + favoriteColumns + ` FROM favorite_launches WHERE launch_id = ?`

	err := repo.dbConn.GetContext(ctx, &dbFavorite, query, launchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting favorite %s: %w", launchID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting favorite %s: %w", launchID, err)
	}
	return toDomainFavorite(&dbFavorite), nil
}

// CountFavorites returns the total number of favorites.
func (repo *Repository) CountFavorites(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM favorite_launches`

	err := repo.dbConn.GetContext(ctx, &count, query)
	if err != nil {
		return 0, fmt.Errorf("getting favorites count: %w", err)
	}
	return count, nil
}

// InsertFavorite stores the record, replacing any existing record for the same launch.
func (repo *Repository) InsertFavorite(ctx context.Context, record *domain.FavoriteRecord) error {
	if record == nil || record.ID == "" {
		return errors.New("inserting favorite: launch id is empty")
	}
	query := `INSERT OR REPLACE INTO favorite_launches (` + favoriteColumns + `)
		      VALUES (:launch_id, :site, :mission_name, :mission_patch, :rocket_name, :rocket_type, :is_favorite, :added_at)`

	_, err := repo.dbConn.NamedExecContext(ctx, query, fromDomainFavorite(record))
	if err != nil {
		return fmt.Errorf("inserting favorite %s: %w", record.ID, err)
	}

	repo.changes.notify()
	return nil
}

// DeleteFavoriteByID removes the favorite for the launch. Removing an absent favorite is a no-op.
func (repo *Repository) DeleteFavoriteByID(ctx context.Context, launchID string) error {
	query := `DELETE FROM favorite_launches WHERE launch_id = ?`

	result, err := repo.dbConn.ExecContext(ctx, query, launchID)
	if err != nil {
		return fmt.Errorf("deleting favorite %s: %w", launchID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("fetching rows affected: %w", err)
	}

	if rowsAffected > 0 {
		repo.changes.notify()
	}
	return nil
}

// DeleteAllFavorites removes every favorite.
func (repo *Repository) DeleteAllFavorites(ctx context.Context) error {
	query := `DELETE FROM favorite_launches`

	_, err := repo.dbConn.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("deleting all favorites: %w", err)
	}

	repo.changes.notify()
	return nil
}

// ToggleFavorite flips the membership of the launch inside a single transaction:
// the delete decides whether the row was present, and the insert only runs if it was not.
// It returns true if the launch is a favorite afterwards.
func (repo *Repository) ToggleFavorite(ctx context.Context, record *domain.FavoriteRecord) (bool, error) {
	if record == nil || record.ID == "" {
		return false, errors.New("toggling favorite: launch id is empty")
	}

	tx, err := repo.dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("starting toggle transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM favorite_launches WHERE launch_id = ?`, record.ID)
	if err != nil {
		return false, fmt.Errorf("toggling favorite %s off: %w", record.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fetching rows affected: %w", err)
	}

	nowFavorite := rowsAffected == 0
	if nowFavorite {
		query := `INSERT INTO favorite_launches (` + favoriteColumns + `)
			      VALUES (:launch_id, :site, :mission_name, :mission_patch, :rocket_name, :rocket_type, :is_favorite, :added_at)`
		if _, err := tx.NamedExecContext(ctx, query, fromDomainFavorite(record)); err != nil {
			return false, fmt.Errorf("toggling favorite %s on: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing toggle of %s: %w", record.ID, err)
	}

	repo.changes.notify()
	return nowFavorite, nil
}
