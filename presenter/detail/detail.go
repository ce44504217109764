// Package detail is the presenter of the launch detail screen.
package detail

import (
	"context"
	"sync"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
)

// State of the detail screen.
type State struct {
	Content presenter.Status[*domain.LaunchDetail]
}

// Intent is a user action on the detail screen.
type Intent interface{ isIntent() }

type (
	LoadDetail  struct{ ID string }
	RetryLoad   struct{}
	OnBackClick struct{}
)

func (LoadDetail) isIntent()  {}
func (RetryLoad) isIntent()   {}
func (OnBackClick) isIntent() {}

// Effect is a one-shot event for the view.
type Effect interface{ isEffect() }

type (
	NavigateBack struct{}
	ShowError    struct{ Message string }
)

func (NavigateBack) isEffect() {}
func (ShowError) isEffect()    {}

// DetailFetcher fetches one launch.
type DetailFetcher interface {
	Execute(ctx context.Context, id string) (*domain.LaunchDetail, error)
}

// Presenter drives the detail screen. It starts Idle until a LoadDetail intent.
type Presenter struct {
	*presenter.Screen[State, Effect]

	fetch DetailFetcher

	mu     sync.Mutex
	lastID string
	seq    uint64 // Only the latest load may write the content.
}

// New returns an idle Presenter.
func New(fetch DetailFetcher, options ...func(*presenter.Settings) error) (*Presenter, error) {
	settings, err := presenter.NewSettings(options...)
	if err != nil {
		return nil, err
	}
	return &Presenter{
		Screen: presenter.NewScreen[State, Effect](State{Content: presenter.Idle[*domain.LaunchDetail]{}}, settings),
		fetch:  fetch,
	}, nil
}

// Handle dispatches intent.
func (p *Presenter) Handle(intent Intent) {
	switch intent := intent.(type) {
	case LoadDetail:
		p.start(intent.ID)
	case RetryLoad:
		p.mu.Lock()
		id := p.lastID
		p.mu.Unlock()
		if id == "" {
			return
		}
		p.start(id)
	case OnBackClick:
		p.Go(func(ctx context.Context) {
			p.Emit(ctx, NavigateBack{})
		})
	}
}

func (p *Presenter) start(id string) {
	p.mu.Lock()
	p.lastID = id
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	p.Go(func(ctx context.Context) {
		p.load(ctx, id, seq)
	})
}

func (p *Presenter) current(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq == seq
}

func (p *Presenter) load(ctx context.Context, id string, seq uint64) {
	p.Update(func(s State) State {
		if p.current(seq) {
			s.Content = presenter.Loading[*domain.LaunchDetail]{}
		}
		return s
	})

	detail, err := p.fetch.Execute(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		message := presenter.ErrorMessage(err, "Unknown error occurred")
		p.Logger().Warn("loading launch detail", "launch_id", id, "error", err)
		p.Update(func(s State) State {
			if p.current(seq) {
				s.Content = presenter.Failed[*domain.LaunchDetail]{Message: message}
			}
			return s
		})
		p.Emit(ctx, ShowError{Message: message})
		return
	}

	p.Update(func(s State) State {
		if p.current(seq) {
			s.Content = presenter.Loaded[*domain.LaunchDetail]{Value: detail}
		}
		return s
	})
}
