package domain

import "context"

// FavoritesStore defines the durable, observable set of favorited launches.
// It is the single source of truth for favorite membership and may be watched
// by several presenters at once.
type FavoritesStore interface {
	// WatchFavorites emits every favorite ordered by AddedAt, newest first.
	// The current snapshot is emitted immediately and again after every committed change.
	// The channel is closed when ctx is done or the store is closed.
	WatchFavorites(ctx context.Context) (<-chan []*FavoriteRecord, error)

	// WatchIsFavorite emits whether the launch is a favorite, re-evaluated after every change.
	WatchIsFavorite(ctx context.Context, launchID string) (<-chan bool, error)

	// WatchFavoritesCount emits the number of favorites, re-evaluated after every change.
	WatchFavoritesCount(ctx context.Context) (<-chan int, error)

	// GetFavoriteByID returns the record for the launch.
	// It returns an error matching ErrNotFound if the launch is not a favorite.
	GetFavoriteByID(ctx context.Context, launchID string) (*FavoriteRecord, error)

	// CountFavorites returns the number of favorites.
	CountFavorites(ctx context.Context) (int, error)

	// InsertFavorite stores the record, replacing any record with the same ID.
	InsertFavorite(ctx context.Context, record *FavoriteRecord) error

	// DeleteFavoriteByID removes the record. Deleting an absent record is not an error.
	DeleteFavoriteByID(ctx context.Context, launchID string) error

	// DeleteAllFavorites removes every record.
	DeleteAllFavorites(ctx context.Context) error

	// ToggleFavorite atomically removes the record if present, or inserts it if absent.
	// It returns the membership after the flip.
	ToggleFavorite(ctx context.Context, record *FavoriteRecord) (bool, error)
}
