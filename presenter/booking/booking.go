// Package booking is the presenter of the booking screen: log in with an email,
// then book or cancel launches by id.
package booking

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9+._%\-]{1,256}@[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ParseLaunchIDs splits input on commas, trims every token and drops the empty ones.
func ParseLaunchIDs(input string) []string {
	ids := []string{}
	for _, token := range strings.Split(input, ",") {
		if id := strings.TrimSpace(token); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// State of the booking screen.
type State struct {
	Email      string
	EmailError string
	LaunchIDs  []string
	LoggedIn   bool
	Request    presenter.Status[string] // Loaded carries the success message, Failed the error.
}

// Error returns the message of the last failed request.
func (s State) Error() string {
	return presenter.MessageOf(s.Request)
}

// SuccessMessage returns the message of the last successful booking or cancellation.
func (s State) SuccessMessage() string {
	message, _ := presenter.ValueOf(s.Request)
	return message
}

// Loading reports whether a request is in flight.
func (s State) Loading() bool {
	return presenter.IsLoading(s.Request)
}

// Intent is a user action on the booking screen.
type Intent interface{ isIntent() }

type (
	OnEmailChange    struct{ Email string }
	OnLaunchIDChange struct{ Input string }
	OnLoginClick     struct{}
	OnBookClick      struct{}
	OnCancelClick    struct{ LaunchID string }
	OnDismissSuccess struct{}
	OnDismissError   struct{}
	OnBackClick      struct{}
)

func (OnEmailChange) isIntent()    {}
func (OnLaunchIDChange) isIntent() {}
func (OnLoginClick) isIntent()     {}
func (OnBookClick) isIntent()      {}
func (OnCancelClick) isIntent()    {}
func (OnDismissSuccess) isIntent() {}
func (OnDismissError) isIntent()   {}
func (OnBackClick) isIntent()      {}

// Effect is a one-shot event for the view.
type Effect interface{ isEffect() }

type (
	ShowSuccess  struct{ Message string }
	ShowError    struct{ Message string }
	NavigateBack struct{}
)

func (ShowSuccess) isEffect()  {}
func (ShowError) isEffect()    {}
func (NavigateBack) isEffect() {}

// Authenticator logs a user in.
type Authenticator interface {
	Execute(ctx context.Context, email string) (*domain.LoginResult, error)
}

// Booker books launches.
type Booker interface {
	Execute(ctx context.Context, ids []string) (*domain.BookingResult, error)
}

// Canceller cancels one booking.
type Canceller interface {
	Execute(ctx context.Context, id string) (*domain.BookingResult, error)
}

// AuthChecker reports whether a user is logged in.
type AuthChecker interface {
	Execute() (bool, error)
}

// EmailReader returns the email of the logged in user.
type EmailReader interface {
	Execute() (string, error)
}

// UseCases groups what the booking screen depends on.
type UseCases struct {
	Login           Authenticator
	BookTrips       Booker
	CancelTrip      Canceller
	CheckAuthStatus AuthChecker
	GetUserEmail    EmailReader
}

// validate checks the use cases New cannot run without. GetUserEmail is optional.
func (uc UseCases) validate() error {
	switch {
	case uc.Login == nil:
		return errors.New("Login use case is required")
	case uc.BookTrips == nil:
		return errors.New("BookTrips use case is required")
	case uc.CancelTrip == nil:
		return errors.New("CancelTrip use case is required")
	case uc.CheckAuthStatus == nil:
		return errors.New("CheckAuthStatus use case is required")
	}
	return nil
}

// Presenter drives the booking screen.
type Presenter struct {
	*presenter.Screen[State, Effect]
	uc UseCases
}

// New returns a Presenter whose LoggedIn flag and email are seeded from the stored session.
func New(uc UseCases, options ...func(*presenter.Settings) error) (*Presenter, error) {
	if err := uc.validate(); err != nil {
		return nil, err
	}
	settings, err := presenter.NewSettings(options...)
	if err != nil {
		return nil, err
	}

	initial := State{
		LaunchIDs: []string{},
		Request:   presenter.Idle[string]{},
	}

	p := &Presenter{uc: uc}
	loggedIn, err := uc.CheckAuthStatus.Execute()
	if err != nil {
		settings.Logger.Warn("checking auth status", "error", err)
	}
	initial.LoggedIn = loggedIn

	if loggedIn && uc.GetUserEmail != nil {
		email, err := uc.GetUserEmail.Execute()
		if err != nil {
			settings.Logger.Warn("reading user email", "error", err)
		}
		initial.Email = email
	}

	p.Screen = presenter.NewScreen[State, Effect](initial, settings)
	return p, nil
}

// Handle dispatches intent. Field edits apply synchronously; requests run as tasks.
func (p *Presenter) Handle(intent Intent) {
	switch intent := intent.(type) {
	case OnEmailChange:
		p.Update(func(s State) State {
			s.Email = intent.Email
			s.EmailError = ""
			if !ValidEmail(intent.Email) {
				s.EmailError = "Invalid email format"
			}
			return s
		})
	case OnLaunchIDChange:
		ids := ParseLaunchIDs(intent.Input)
		p.Update(func(s State) State {
			s.LaunchIDs = ids
			return s
		})
	case OnLoginClick:
		p.login()
	case OnBookClick:
		p.book()
	case OnCancelClick:
		p.cancel(strings.TrimSpace(intent.LaunchID))
	case OnDismissSuccess:
		p.Update(func(s State) State {
			if _, ok := s.Request.(presenter.Loaded[string]); ok {
				s.Request = presenter.Idle[string]{}
			}
			return s
		})
	case OnDismissError:
		p.Update(func(s State) State {
			if _, ok := s.Request.(presenter.Failed[string]); ok {
				s.Request = presenter.Idle[string]{}
			}
			return s
		})
	case OnBackClick:
		p.emitAsync(NavigateBack{})
	}
}

func (p *Presenter) emitAsync(effect Effect) {
	p.Go(func(ctx context.Context) {
		p.Emit(ctx, effect)
	})
}

func (p *Presenter) login() {
	email := p.State().Email
	if !ValidEmail(email) {
		p.Update(func(s State) State {
			s.EmailError = "Please enter a valid email"
			return s
		})
		return
	}

	p.Go(func(ctx context.Context) {
		p.Update(func(s State) State {
			s.Request = presenter.Loading[string]{}
			return s
		})

		_, err := p.uc.Login.Execute(ctx, email)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			message := presenter.ErrorMessage(err, "Login failed")
			p.Update(func(s State) State {
				s.Request = presenter.Failed[string]{Message: message}
				return s
			})
			p.Emit(ctx, ShowError{Message: message})
			return
		}

		p.Logger().Info("logged in")
		p.Update(func(s State) State {
			s.LoggedIn = true
			s.EmailError = ""
			s.Request = presenter.Idle[string]{}
			return s
		})
		p.Emit(ctx, ShowSuccess{Message: "Login successful!"})
	})
}

func (p *Presenter) book() {
	state := p.State()
	if len(state.LaunchIDs) == 0 {
		p.emitAsync(ShowError{Message: "Please enter at least one launch ID"})
		return
	}
	if !state.LoggedIn {
		p.emitAsync(ShowError{Message: "Please login first"})
		return
	}

	ids := append([]string(nil), state.LaunchIDs...)
	p.Go(func(ctx context.Context) {
		p.submit(ctx, "Booking successful!", "Booking failed", func(ctx context.Context) (*domain.BookingResult, error) {
			return p.uc.BookTrips.Execute(ctx, ids)
		})
	})
}

func (p *Presenter) cancel(id string) {
	if id == "" {
		p.emitAsync(ShowError{Message: "Please enter at least one launch ID"})
		return
	}
	if !p.State().LoggedIn {
		p.emitAsync(ShowError{Message: "Please login first"})
		return
	}

	p.Go(func(ctx context.Context) {
		p.submit(ctx, "Trip cancelled", "Cancellation failed", func(ctx context.Context) (*domain.BookingResult, error) {
			return p.uc.CancelTrip.Execute(ctx, id)
		})
	})
}

// submit runs a booking mutation. A result with Success false is a failure even
// though the call itself succeeded.
func (p *Presenter) submit(ctx context.Context, successDefault, failureDefault string, call func(context.Context) (*domain.BookingResult, error)) {
	p.Update(func(s State) State {
		s.Request = presenter.Loading[string]{}
		return s
	})

	result, err := call(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.fail(ctx, presenter.ErrorMessage(err, failureDefault))
		return
	}

	if err := result.Failure(); err != nil {
		p.Logger().Info("booking rejected", "error", err)
		p.fail(ctx, presenter.ErrorMessage(err, failureDefault))
		return
	}

	message := result.Message
	if message == "" {
		message = successDefault
	}
	p.Update(func(s State) State {
		s.Request = presenter.Loaded[string]{Value: message}
		return s
	})
	p.Emit(ctx, ShowSuccess{Message: message})
}

func (p *Presenter) fail(ctx context.Context, message string) {
	p.Update(func(s State) State {
		s.Request = presenter.Failed[string]{Message: message}
		return s
	})
	p.Emit(ctx, ShowError{Message: message})
}
