// Package launches is the presenter of the launch list screen.
package launches

import (
	"context"
	"maps"
	"sync"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
)

// State of the launch list.
type State struct {
	Content     presenter.Status[[]domain.Launch]
	FavoriteIDs map[string]struct{} // Written only by the favorites subscription.
}

// IsFavorite reports whether id is among the favorites.
func (s State) IsFavorite(id string) bool {
	_, ok := s.FavoriteIDs[id]
	return ok
}

// Intent is a user action on the launch list.
type Intent interface{ isIntent() }

type (
	LoadLaunches    struct{}
	RetryLoad       struct{}
	OnLaunchClick   struct{ LaunchID string }
	OnFavoriteClick struct{ Launch domain.Launch }
	Logout          struct{}
)

func (LoadLaunches) isIntent()    {}
func (RetryLoad) isIntent()       {}
func (OnLaunchClick) isIntent()   {}
func (OnFavoriteClick) isIntent() {}
func (Logout) isIntent()          {}

// Effect is a one-shot event for the view.
type Effect interface{ isEffect() }

type (
	NavigateToDetail    struct{ LaunchID string }
	ShowFavoriteAdded   struct{ Name string }
	ShowFavoriteRemoved struct{ Name string }
	ShowError           struct{ Message string }
)

func (NavigateToDetail) isEffect()    {}
func (ShowFavoriteAdded) isEffect()   {}
func (ShowFavoriteRemoved) isEffect() {}
func (ShowError) isEffect()           {}

// Launches fetches the launch list.
type Launches interface {
	Execute(ctx context.Context) ([]domain.Launch, error)
}

// Favorites streams the favorite launches.
type Favorites interface {
	Execute(ctx context.Context) (<-chan []domain.Launch, error)
}

// Toggler flips a launch in or out of the favorites.
type Toggler interface {
	Execute(ctx context.Context, launch domain.Launch) (bool, error)
}

// Logouter forgets the stored credentials.
type Logouter interface {
	Execute() error
}

// Presenter drives the launch list screen.
type Presenter struct {
	*presenter.Screen[State, Effect]

	launches  Launches
	favorites Favorites
	toggle    Toggler
	logout    Logouter

	mu  sync.Mutex
	seq uint64 // Only the latest load may write the content.
}

// New returns a Presenter that starts loading launches and observing favorites.
func New(launches Launches, favorites Favorites, toggle Toggler, logout Logouter, options ...func(*presenter.Settings) error) (*Presenter, error) {
	settings, err := presenter.NewSettings(options...)
	if err != nil {
		return nil, err
	}

	p := &Presenter{
		Screen: presenter.NewScreen[State, Effect](State{
			Content:     presenter.Idle[[]domain.Launch]{},
			FavoriteIDs: map[string]struct{}{},
		}, settings),
		launches:  launches,
		favorites: favorites,
		toggle:    toggle,
		logout:    logout,
	}

	p.Handle(LoadLaunches{})
	p.Go(p.observeFavorites)
	return p, nil
}

// Handle dispatches intent. Work runs as tasks, so effects of separate intents may
// arrive in any order.
func (p *Presenter) Handle(intent Intent) {
	switch intent := intent.(type) {
	case LoadLaunches, RetryLoad:
		p.start()
	case OnLaunchClick:
		p.Go(func(ctx context.Context) {
			p.Emit(ctx, NavigateToDetail{LaunchID: intent.LaunchID})
		})
	case OnFavoriteClick:
		p.Go(func(ctx context.Context) {
			p.toggleFavorite(ctx, intent.Launch)
		})
	case Logout:
		p.Go(func(ctx context.Context) {
			if err := p.logout.Execute(); err != nil {
				p.Logger().Error("logging out", "error", err)
			}
		})
	}
}

func (p *Presenter) start() {
	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.Go(func(ctx context.Context) {
		p.load(ctx, seq)
	})
}

func (p *Presenter) current(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq == seq
}

func (p *Presenter) load(ctx context.Context, seq uint64) {
	p.Update(func(s State) State {
		if p.current(seq) {
			s.Content = presenter.Loading[[]domain.Launch]{}
		}
		return s
	})

	launches, err := p.launches.Execute(ctx)
	if !p.current(seq) {
		p.Logger().Debug("dropping superseded launch load", "seq", seq)
		return
	}
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		message := presenter.ErrorMessage(err, "Unknown error occurred")
		p.Update(func(s State) State {
			if p.current(seq) {
				s.Content = presenter.Failed[[]domain.Launch]{Message: message}
			}
			return s
		})
		p.Emit(ctx, ShowError{Message: message})
		return
	}

	p.Update(func(s State) State {
		if p.current(seq) {
			s.Content = presenter.Loaded[[]domain.Launch]{Value: launches}
		}
		return s
	})
}

func (p *Presenter) observeFavorites(ctx context.Context) {
	favorites, err := p.favorites.Execute(ctx)
	if err != nil {
		p.Logger().Error("observing favorites", "error", err)
		return
	}

	for batch := range favorites {
		ids := make(map[string]struct{}, len(batch))
		for _, launch := range batch {
			ids[launch.ID] = struct{}{}
		}
		p.Update(func(s State) State {
			s.FavoriteIDs = ids
			return s
		})
		p.Logger().Debug("favorites updated", "count", len(ids))
	}
}

func (p *Presenter) toggleFavorite(ctx context.Context, launch domain.Launch) {
	added, err := p.toggle.Execute(ctx, launch)
	if err != nil {
		p.Logger().Error("toggling favorite", "launch_id", launch.ID, "error", err)
		p.Emit(ctx, ShowError{Message: presenter.ErrorMessage(err, "Failed to update favorite")})
		return
	}

	if added {
		p.Emit(ctx, ShowFavoriteAdded{Name: launch.DisplayName()})
		return
	}
	p.Emit(ctx, ShowFavoriteRemoved{Name: launch.DisplayName()})
}

// FavoriteIDs returns a copy of the current favorite ids.
func (p *Presenter) FavoriteIDs() map[string]struct{} {
	return maps.Clone(p.State().FavoriteIDs)
}
