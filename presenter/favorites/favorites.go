// Package favorites is the presenter of the favorites screen.
package favorites

import (
	"context"
	"sync"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
)

// State of the favorites screen.
type State struct {
	Content presenter.Status[[]domain.Launch]
}

// Intent is a user action on the favorites screen.
type Intent interface{ isIntent() }

type (
	LoadFavorites    struct{}
	OnLaunchClick    struct{ LaunchID string }
	OnRemoveFavorite struct{ Launch domain.Launch }
)

func (LoadFavorites) isIntent()    {}
func (OnLaunchClick) isIntent()    {}
func (OnRemoveFavorite) isIntent() {}

// Effect is a one-shot event for the view.
type Effect interface{ isEffect() }

type (
	NavigateToDetail struct{ LaunchID string }
	ShowRemoved      struct{ Name string }
)

func (NavigateToDetail) isEffect() {}
func (ShowRemoved) isEffect()      {}

// Favorites streams the favorite launches.
type Favorites interface {
	Execute(ctx context.Context) (<-chan []domain.Launch, error)
}

// Toggler flips a launch in or out of the favorites.
type Toggler interface {
	Execute(ctx context.Context, launch domain.Launch) (bool, error)
}

// Presenter drives the favorites screen.
type Presenter struct {
	*presenter.Screen[State, Effect]

	favorites Favorites
	toggle    Toggler

	mu        sync.Mutex
	cancelSub context.CancelFunc
	subSeq    uint64
}

// New returns a Presenter subscribed to the favorites.
func New(favorites Favorites, toggle Toggler, options ...func(*presenter.Settings) error) (*Presenter, error) {
	settings, err := presenter.NewSettings(options...)
	if err != nil {
		return nil, err
	}

	p := &Presenter{
		Screen:    presenter.NewScreen[State, Effect](State{Content: presenter.Idle[[]domain.Launch]{}}, settings),
		favorites: favorites,
		toggle:    toggle,
	}
	p.Handle(LoadFavorites{})
	return p, nil
}

// Handle dispatches intent.
func (p *Presenter) Handle(intent Intent) {
	switch intent := intent.(type) {
	case LoadFavorites:
		p.Go(p.subscribe)
	case OnLaunchClick:
		p.Go(func(ctx context.Context) {
			p.Emit(ctx, NavigateToDetail{LaunchID: intent.LaunchID})
		})
	case OnRemoveFavorite:
		p.Go(func(ctx context.Context) {
			p.remove(ctx, intent.Launch)
		})
	}
}

// subscribe replaces any running subscription with a fresh one.
func (p *Presenter) subscribe(ctx context.Context) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.cancelSub != nil {
		p.cancelSub()
	}
	p.cancelSub = cancel
	p.subSeq++
	seq := p.subSeq
	p.mu.Unlock()

	current := func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.subSeq == seq
	}

	p.Update(func(s State) State {
		if current() {
			s.Content = presenter.Loading[[]domain.Launch]{}
		}
		return s
	})

	stream, err := p.favorites.Execute(subCtx)
	if err != nil {
		p.Logger().Error("subscribing to favorites", "error", err)
		message := presenter.ErrorMessage(err, "Unknown error occurred")
		p.Update(func(s State) State {
			if current() {
				s.Content = presenter.Failed[[]domain.Launch]{Message: message}
			}
			return s
		})
		return
	}

	for launches := range stream {
		p.Update(func(s State) State {
			if current() {
				s.Content = presenter.Loaded[[]domain.Launch]{Value: launches}
			}
			return s
		})
	}
}

func (p *Presenter) remove(ctx context.Context, launch domain.Launch) {
	added, err := p.toggle.Execute(ctx, launch)
	if err != nil {
		p.Logger().Error("removing favorite", "launch_id", launch.ID, "error", err)
		return
	}
	if added {
		p.Logger().Warn("removing a launch that was not a favorite added it back", "launch_id", launch.ID)
	}
	p.Emit(ctx, ShowRemoved{Name: launch.DisplayName()})
}
