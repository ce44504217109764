// Package usecase holds one type per application operation. Each type forwards to a
// repository and is what the presenters depend on.
package usecase

import (
	"context"

	"github.com/tfkr-ae/launchbook/domain"
)

// LaunchRepository is the launch read side.
type LaunchRepository interface {
	GetLaunches(ctx context.Context) ([]domain.Launch, error)
	GetLaunchDetail(ctx context.Context, id string) (*domain.LaunchDetail, error)
}

// FavoriteRepository is the local favorites side.
type FavoriteRepository interface {
	GetAllFavorites(ctx context.Context) (<-chan []domain.Launch, error)
	IsFavorite(ctx context.Context, id string) (<-chan bool, error)
	FavoritesCount(ctx context.Context) (<-chan int, error)
	ToggleFavorite(ctx context.Context, launch domain.Launch) (bool, error)
}

// BookingRepository is the authenticated side.
type BookingRepository interface {
	Login(ctx context.Context, email string) (*domain.LoginResult, error)
	BookTrips(ctx context.Context, ids []string) (*domain.BookingResult, error)
	CancelTrip(ctx context.Context, id string) (*domain.BookingResult, error)
	Logout() error
	IsAuthenticated() (bool, error)
	UserEmail() (string, error)
}

// GetLaunches fetches the launch list.
type GetLaunches struct{ repo LaunchRepository }

// NewGetLaunches returns a GetLaunches reading from repo.
func NewGetLaunches(repo LaunchRepository) *GetLaunches { return &GetLaunches{repo: repo} }

// Execute returns the launches in server order.
func (u *GetLaunches) Execute(ctx context.Context) ([]domain.Launch, error) {
	return u.repo.GetLaunches(ctx)
}

// GetLaunchDetail fetches one launch.
type GetLaunchDetail struct{ repo LaunchRepository }

// NewGetLaunchDetail returns a GetLaunchDetail reading from repo.
func NewGetLaunchDetail(repo LaunchRepository) *GetLaunchDetail {
	return &GetLaunchDetail{repo: repo}
}

// Execute returns the detail of launch id.
func (u *GetLaunchDetail) Execute(ctx context.Context, id string) (*domain.LaunchDetail, error) {
	return u.repo.GetLaunchDetail(ctx, id)
}

// GetFavoriteLaunches streams the favorites, newest first.
type GetFavoriteLaunches struct{ repo FavoriteRepository }

// NewGetFavoriteLaunches returns a GetFavoriteLaunches reading from repo.
func NewGetFavoriteLaunches(repo FavoriteRepository) *GetFavoriteLaunches {
	return &GetFavoriteLaunches{repo: repo}
}

// Execute streams the favorites until ctx is done.
func (u *GetFavoriteLaunches) Execute(ctx context.Context) (<-chan []domain.Launch, error) {
	return u.repo.GetAllFavorites(ctx)
}

// IsFavorite streams the favorite state of one launch.
type IsFavorite struct{ repo FavoriteRepository }

// NewIsFavorite returns an IsFavorite reading from repo.
func NewIsFavorite(repo FavoriteRepository) *IsFavorite { return &IsFavorite{repo: repo} }

// Execute streams whether launch id is a favorite until ctx is done.
func (u *IsFavorite) Execute(ctx context.Context, id string) (<-chan bool, error) {
	return u.repo.IsFavorite(ctx, id)
}

// GetFavoritesCount streams the number of favorites.
type GetFavoritesCount struct{ repo FavoriteRepository }

// NewGetFavoritesCount returns a GetFavoritesCount reading from repo.
func NewGetFavoritesCount(repo FavoriteRepository) *GetFavoritesCount {
	return &GetFavoritesCount{repo: repo}
}

// Execute streams the favorites count until ctx is done.
func (u *GetFavoritesCount) Execute(ctx context.Context) (<-chan int, error) {
	return u.repo.FavoritesCount(ctx)
}

// ToggleFavorite flips a launch in or out of the favorites and reports the new state.
type ToggleFavorite struct{ repo FavoriteRepository }

// NewToggleFavorite returns a ToggleFavorite writing to repo.
func NewToggleFavorite(repo FavoriteRepository) *ToggleFavorite {
	return &ToggleFavorite{repo: repo}
}

// Execute reports true when launch was added and false when it was removed.
func (u *ToggleFavorite) Execute(ctx context.Context, launch domain.Launch) (bool, error) {
	return u.repo.ToggleFavorite(ctx, launch)
}

// Login authenticates with an email.
type Login struct{ repo BookingRepository }

// NewLogin returns a Login backed by repo.
func NewLogin(repo BookingRepository) *Login { return &Login{repo: repo} }

// Execute logs in as email and stores the session.
func (u *Login) Execute(ctx context.Context, email string) (*domain.LoginResult, error) {
	return u.repo.Login(ctx, email)
}

// BookTrips books launches for the logged in user.
type BookTrips struct{ repo BookingRepository }

// NewBookTrips returns a BookTrips backed by repo.
func NewBookTrips(repo BookingRepository) *BookTrips { return &BookTrips{repo: repo} }

// Execute books ids. A result with Success false is still returned without error.
func (u *BookTrips) Execute(ctx context.Context, ids []string) (*domain.BookingResult, error) {
	return u.repo.BookTrips(ctx, ids)
}

// CancelTrip cancels one booking of the logged in user.
type CancelTrip struct{ repo BookingRepository }

// NewCancelTrip returns a CancelTrip backed by repo.
func NewCancelTrip(repo BookingRepository) *CancelTrip { return &CancelTrip{repo: repo} }

// Execute cancels the booking of launch id.
func (u *CancelTrip) Execute(ctx context.Context, id string) (*domain.BookingResult, error) {
	return u.repo.CancelTrip(ctx, id)
}

// Logout forgets the stored credentials.
type Logout struct{ repo BookingRepository }

// NewLogout returns a Logout backed by repo.
func NewLogout(repo BookingRepository) *Logout { return &Logout{repo: repo} }

// Execute clears the stored session.
func (u *Logout) Execute() error {
	return u.repo.Logout()
}

// CheckAuthStatus reports whether a user is logged in.
type CheckAuthStatus struct{ repo BookingRepository }

// NewCheckAuthStatus returns a CheckAuthStatus backed by repo.
func NewCheckAuthStatus(repo BookingRepository) *CheckAuthStatus {
	return &CheckAuthStatus{repo: repo}
}

// Execute reports whether a token and user id are stored.
func (u *CheckAuthStatus) Execute() (bool, error) {
	return u.repo.IsAuthenticated()
}

// GetUserEmail returns the email of the logged in user, "" when nobody is.
type GetUserEmail struct{ repo BookingRepository }

// NewGetUserEmail returns a GetUserEmail backed by repo.
func NewGetUserEmail(repo BookingRepository) *GetUserEmail { return &GetUserEmail{repo: repo} }

// Execute returns the stored email.
func (u *GetUserEmail) Execute() (string, error) {
	return u.repo.UserEmail()
}
