package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/gateway"
	"github.com/tfkr-ae/launchbook/mapper"
)

// BookingGateway is the authenticated side of the remote API.
type BookingGateway interface {
	Login(ctx context.Context, email string) (*gateway.LoginData, error)
	BookTrips(ctx context.Context, ids []string) (*gateway.BookTripsData, error)
	CancelTrip(ctx context.Context, id string) (*gateway.CancelTripData, error)
}

const authRequiredMessage = "Authentication required. Please login again."

// BookingRepository logs users in and books or cancels trips on their behalf.
// Credentials live in the SecretStore.
type BookingRepository struct {
	gateway BookingGateway
	secrets domain.SecretStore
	logger  *slog.Logger
}

// NewBookingRepository returns a BookingRepository. A nil logger uses slog.Default().
func NewBookingRepository(gw BookingGateway, secrets domain.SecretStore, logger *slog.Logger) *BookingRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingRepository{gateway: gw, secrets: secrets, logger: logger}
}

// Login exchanges email for a token and stores the token, user id and email.
// Nothing is stored when the server returns no user.
func (r *BookingRepository) Login(ctx context.Context, email string) (*domain.LoginResult, error) {
	data, err := r.gateway.Login(ctx, email)
	if err != nil {
		return nil, err
	}

	result := mapper.ToLoginResult(data.Login)
	if result == nil {
		return nil, domain.NewError(domain.KindEmptyPayload, "Login failed - Invalid response", nil)
	}

	if err := r.secrets.SaveToken(result.Token); err != nil {
		return nil, fmt.Errorf("saving token : %w", err)
	}
	if err := r.secrets.SaveUserID(result.UserID); err != nil {
		return nil, fmt.Errorf("saving user id : %w", err)
	}
	if err := r.secrets.SaveUserEmail(email); err != nil {
		return nil, fmt.Errorf("saving user email : %w", err)
	}

	r.logger.Info("logged in", "user_id", result.UserID)
	return result, nil
}

// BookTrips books ids. It fails without a gateway call when no user is logged in
// or ids is empty.
func (r *BookingRepository) BookTrips(ctx context.Context, ids []string) (*domain.BookingResult, error) {
	if err := r.requireAuth(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, domain.NewError(domain.KindValidation, "Please enter at least one launch ID", nil)
	}

	data, err := r.gateway.BookTrips(ctx, ids)
	if err != nil {
		return nil, err
	}
	if data.BookTrips == nil {
		return nil, domain.NewError(domain.KindEmptyPayload, "No data received", nil)
	}
	return mapper.ToBookingResult(data.BookTrips), nil
}

// CancelTrip cancels the booking of id. It fails without a gateway call when no user is logged in.
func (r *BookingRepository) CancelTrip(ctx context.Context, id string) (*domain.BookingResult, error) {
	if err := r.requireAuth(); err != nil {
		return nil, err
	}

	data, err := r.gateway.CancelTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	if data.CancelTrip == nil {
		return nil, domain.NewError(domain.KindEmptyPayload, "No data received", nil)
	}
	return mapper.ToBookingResult(data.CancelTrip), nil
}

// Logout forgets the stored credentials.
func (r *BookingRepository) Logout() error {
	if err := r.secrets.ClearToken(); err != nil {
		return fmt.Errorf("clearing credentials : %w", err)
	}
	r.logger.Info("logged out")
	return nil
}

// IsAuthenticated reports whether a token and user id are stored.
func (r *BookingRepository) IsAuthenticated() (bool, error) {
	return r.secrets.IsAuthenticated()
}

// UserEmail returns the email of the logged in user, or "" when nobody is logged in.
func (r *BookingRepository) UserEmail() (string, error) {
	email, err := r.secrets.GetUserEmail()
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading user email : %w", err)
	}
	return email, nil
}

func (r *BookingRepository) requireAuth() error {
	authenticated, err := r.secrets.IsAuthenticated()
	if err != nil {
		return fmt.Errorf("checking authentication : %w", err)
	}
	if !authenticated {
		return domain.NewError(domain.KindAuthRequired, authRequiredMessage, nil)
	}
	return nil
}
