package repository

import (
	"context"
	"log/slog"

	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/gateway"
	"github.com/tfkr-ae/launchbook/mapper"
)

// LaunchGateway is the read side of the remote API.
type LaunchGateway interface {
	GetLaunches(ctx context.Context) (*gateway.LaunchesData, error)
	GetLaunchDetail(ctx context.Context, id string) (*gateway.LaunchDetailData, error)
}

// LaunchRepository reads launches from the remote API. Nothing is cached.
type LaunchRepository struct {
	gateway LaunchGateway
	logger  *slog.Logger
}

// NewLaunchRepository returns a LaunchRepository over gw. A nil logger uses slog.Default().
func NewLaunchRepository(gw LaunchGateway, logger *slog.Logger) *LaunchRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &LaunchRepository{gateway: gw, logger: logger}
}

// GetLaunches returns every non-null launch in server order.
func (r *LaunchRepository) GetLaunches(ctx context.Context) ([]domain.Launch, error) {
	data, err := r.gateway.GetLaunches(ctx)
	if err != nil {
		return nil, err
	}
	if data.Launches == nil {
		return nil, domain.NewError(domain.KindEmptyPayload, "No data received", nil)
	}

	launches := mapper.ToLaunches(data.Launches.Launches)
	r.logger.Debug("fetched launches", "received", len(data.Launches.Launches), "mapped", len(launches))
	return launches, nil
}

// GetLaunchDetail returns the launch with id, or a KindNotFound error when the server has none.
func (r *LaunchRepository) GetLaunchDetail(ctx context.Context, id string) (*domain.LaunchDetail, error) {
	data, err := r.gateway.GetLaunchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if data.Launch == nil {
		return nil, domain.NewError(domain.KindNotFound, "Launch not found", nil)
	}
	return mapper.ToLaunchDetail(data.Launch), nil
}
