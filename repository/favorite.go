package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/mapper"
)

// FavoriteRepository keeps the local favorites and exposes them as live streams.
type FavoriteRepository struct {
	store  domain.FavoritesStore
	logger *slog.Logger
	now    func() time.Time
}

// NewFavoriteRepository returns a FavoriteRepository over store and applies the options in order.
func NewFavoriteRepository(store domain.FavoritesStore, options ...func(*FavoriteRepository) error) (*FavoriteRepository, error) {
	repo := &FavoriteRepository{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, option := range options {
		if err := option(repo); err != nil {
			return nil, fmt.Errorf("applying option on favorite repository : %w", err)
		}
	}
	return repo, nil
}

// WithFavoriteLogger sets the logger. A nil logger keeps the default.
func WithFavoriteLogger(logger *slog.Logger) func(*FavoriteRepository) error {
	return func(repo *FavoriteRepository) error {
		if logger != nil {
			repo.logger = logger
		}
		return nil
	}
}

// WithClock sets the clock used to stamp new favorites.
func WithClock(now func() time.Time) func(*FavoriteRepository) error {
	return func(repo *FavoriteRepository) error {
		if now == nil {
			return fmt.Errorf("clock is nil")
		}
		repo.now = now
		return nil
	}
}

// GetAllFavorites streams the favorite launches, most recently added first.
// The channel closes when ctx is done or the store shuts down.
func (r *FavoriteRepository) GetAllFavorites(ctx context.Context) (<-chan []domain.Launch, error) {
	records, err := r.store.WatchFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("watching favorites : %w", err)
	}

	out := make(chan []domain.Launch)
	go func() {
		defer close(out)
		for batch := range records {
			select {
			case out <- mapper.FromFavoriteRecords(batch):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// IsFavorite streams whether id is a favorite.
func (r *FavoriteRepository) IsFavorite(ctx context.Context, id string) (<-chan bool, error) {
	ch, err := r.store.WatchIsFavorite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("watching favorite %s : %w", id, err)
	}
	return ch, nil
}

// FavoritesCount streams the number of favorites.
func (r *FavoriteRepository) FavoritesCount(ctx context.Context) (<-chan int, error) {
	ch, err := r.store.WatchFavoritesCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("watching favorites count : %w", err)
	}
	return ch, nil
}

// ToggleFavorite flips the favorite state of launch and reports whether it is now a favorite.
func (r *FavoriteRepository) ToggleFavorite(ctx context.Context, launch domain.Launch) (bool, error) {
	added, err := r.store.ToggleFavorite(ctx, mapper.ToFavoriteRecord(launch, r.now()))
	if err != nil {
		r.logger.Error("toggling favorite", "launch_id", launch.ID, "error", err)
		return false, err
	}
	r.logger.Info("toggled favorite", "launch_id", launch.ID, "favorite", added)
	return added, nil
}

// AddToFavorites stores launch as a favorite, replacing an existing record.
func (r *FavoriteRepository) AddToFavorites(ctx context.Context, launch domain.Launch) error {
	if err := r.store.InsertFavorite(ctx, mapper.ToFavoriteRecord(launch, r.now())); err != nil {
		r.logger.Error("adding favorite", "launch_id", launch.ID, "error", err)
		return err
	}
	r.logger.Info("added favorite", "launch_id", launch.ID)
	return nil
}

// RemoveFromFavorites removes id from the favorites. Removing a missing id succeeds.
func (r *FavoriteRepository) RemoveFromFavorites(ctx context.Context, id string) error {
	if err := r.store.DeleteFavoriteByID(ctx, id); err != nil {
		r.logger.Error("removing favorite", "launch_id", id, "error", err)
		return err
	}
	r.logger.Info("removed favorite", "launch_id", id)
	return nil
}

// ClearFavorites removes every favorite.
func (r *FavoriteRepository) ClearFavorites(ctx context.Context) error {
	if err := r.store.DeleteAllFavorites(ctx); err != nil {
		return fmt.Errorf("clearing favorites : %w", err)
	}
	r.logger.Info("cleared favorites")
	return nil
}
