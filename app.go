package launchbook

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
	"github.com/tfkr-ae/launchbook/presenter/booking"
	"github.com/tfkr-ae/launchbook/presenter/detail"
	"github.com/tfkr-ae/launchbook/presenter/favorites"
	"github.com/tfkr-ae/launchbook/presenter/launches"
	"github.com/tfkr-ae/launchbook/repository"
	"github.com/tfkr-ae/launchbook/usecase"
)

// RemoteGateway is the remote launch API used by the repositories.
type RemoteGateway interface {
	repository.LaunchGateway
	repository.BookingGateway
}

// UseCases groups every application operation.
type UseCases struct {
	GetLaunches         *usecase.GetLaunches
	GetLaunchDetail     *usecase.GetLaunchDetail
	GetFavoriteLaunches *usecase.GetFavoriteLaunches
	IsFavorite          *usecase.IsFavorite
	GetFavoritesCount   *usecase.GetFavoritesCount
	ToggleFavorite      *usecase.ToggleFavorite
	Login               *usecase.Login
	BookTrips           *usecase.BookTrips
	CancelTrip          *usecase.CancelTrip
	Logout              *usecase.Logout
	CheckAuthStatus     *usecase.CheckAuthStatus
	GetUserEmail        *usecase.GetUserEmail
}

// App owns the stores, the gateway and every presenter created through it.
type App struct {
	Logger    *slog.Logger // Logger shared by every layer
	ConfigDir string       // Directory holding config.yaml, the database and the master key
	Config    *Config      // Loaded configuration, nil without WithConfigDir
	UseCases  UseCases

	favorites    domain.FavoritesStore
	secrets      domain.SecretStore
	storeCloser  func() error // set when the app opened the store itself
	gateway      RemoteGateway
	now          func() time.Time
	effectBuffer *int

	mu         sync.Mutex
	presenters []interface{ Close() }
	closed     bool
}

// New creates an App from options. A favorites store, a secret store and a gateway are required,
// typically through WithConfigDir, WithStore and WithGateway in that order.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Logger: slog.Default(),
		now:    time.Now,
	}

	if err := app.WithOptions(options...); err != nil {
		app.closeStore()
		return nil, err
	}

	if err := app.wire(); err != nil {
		app.closeStore()
		return nil, err
	}
	return app, nil
}

func (app *App) wire() error {
	switch {
	case app.favorites == nil || app.secrets == nil:
		return errors.New("no store configured")
	case app.gateway == nil:
		return errors.New("no gateway configured")
	}

	launchRepo := repository.NewLaunchRepository(app.gateway, app.Logger)
	bookingRepo := repository.NewBookingRepository(app.gateway, app.secrets, app.Logger)
	favoriteRepo, err := repository.NewFavoriteRepository(app.favorites,
		repository.WithFavoriteLogger(app.Logger),
		repository.WithClock(app.now),
	)
	if err != nil {
		return fmt.Errorf("creating favorite repository : %w", err)
	}

	app.UseCases = UseCases{
		GetLaunches:         usecase.NewGetLaunches(launchRepo),
		GetLaunchDetail:     usecase.NewGetLaunchDetail(launchRepo),
		GetFavoriteLaunches: usecase.NewGetFavoriteLaunches(favoriteRepo),
		IsFavorite:          usecase.NewIsFavorite(favoriteRepo),
		GetFavoritesCount:   usecase.NewGetFavoritesCount(favoriteRepo),
		ToggleFavorite:      usecase.NewToggleFavorite(favoriteRepo),
		Login:               usecase.NewLogin(bookingRepo),
		BookTrips:           usecase.NewBookTrips(bookingRepo),
		CancelTrip:          usecase.NewCancelTrip(bookingRepo),
		Logout:              usecase.NewLogout(bookingRepo),
		CheckAuthStatus:     usecase.NewCheckAuthStatus(bookingRepo),
		GetUserEmail:        usecase.NewGetUserEmail(bookingRepo),
	}
	return nil
}

func (app *App) presenterOptions() []func(*presenter.Settings) error {
	options := []func(*presenter.Settings) error{presenter.WithLogger(app.Logger)}
	switch {
	case app.effectBuffer != nil:
		options = append(options, presenter.WithEffectBuffer(*app.effectBuffer))
	case app.Config != nil:
		options = append(options, presenter.WithEffectBuffer(app.Config.EffectBuffer))
	}
	return options
}

// track registers p to be closed by Close, or closes it right away if the app is already closed.
func (app *App) track(p interface{ Close() }) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.closed {
		p.Close()
		return errors.New("app is closed")
	}
	app.presenters = append(app.presenters, p)
	return nil
}

// NewLaunchesPresenter returns a launch list presenter. It starts loading immediately.
func (app *App) NewLaunchesPresenter() (*launches.Presenter, error) {
	p, err := launches.New(
		app.UseCases.GetLaunches,
		app.UseCases.GetFavoriteLaunches,
		app.UseCases.ToggleFavorite,
		app.UseCases.Logout,
		app.presenterOptions()...,
	)
	if err != nil {
		return nil, fmt.Errorf("creating launches presenter : %w", err)
	}
	if err := app.track(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewDetailPresenter returns a launch detail presenter waiting for a LoadDetail intent.
func (app *App) NewDetailPresenter() (*detail.Presenter, error) {
	p, err := detail.New(app.UseCases.GetLaunchDetail, app.presenterOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating detail presenter : %w", err)
	}
	if err := app.track(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFavoritesPresenter returns a favorites presenter. It subscribes to the favorites immediately.
func (app *App) NewFavoritesPresenter() (*favorites.Presenter, error) {
	p, err := favorites.New(app.UseCases.GetFavoriteLaunches, app.UseCases.ToggleFavorite, app.presenterOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating favorites presenter : %w", err)
	}
	if err := app.track(p); err != nil {
		return nil, err
	}
	return p, nil
}

// NewBookingPresenter returns a booking presenter seeded with the current session.
func (app *App) NewBookingPresenter() (*booking.Presenter, error) {
	p, err := booking.New(booking.UseCases{
		Login:           app.UseCases.Login,
		BookTrips:       app.UseCases.BookTrips,
		CancelTrip:      app.UseCases.CancelTrip,
		CheckAuthStatus: app.UseCases.CheckAuthStatus,
		GetUserEmail:    app.UseCases.GetUserEmail,
	}, app.presenterOptions()...)
	if err != nil {
		return nil, fmt.Errorf("creating booking presenter : %w", err)
	}
	if err := app.track(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (app *App) closeStore() error {
	if app.storeCloser == nil {
		return nil
	}
	err := app.storeCloser()
	app.storeCloser = nil
	if err != nil {
		return fmt.Errorf("closing store : %w", err)
	}
	return nil
}

// Close closes every presenter created through the app, newest first, then the store it opened.
// It is safe to call more than once.
func (app *App) Close() error {
	app.mu.Lock()
	if app.closed {
		app.mu.Unlock()
		return nil
	}
	app.closed = true
	presenters := app.presenters
	app.presenters = nil
	app.mu.Unlock()

	for _, p := range slices.Backward(presenters) {
		p.Close()
	}
	return app.closeStore()
}
