package launchbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/tfkr-ae/launchbook/db"
	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/gateway"
)

// WithOptions applies a series of configuration functions to the app.
// It returns the first error encountered.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		err := option(app)
		if err != nil {
			return fmt.Errorf("applying option on launchbook : %w", err)
		}
	}
	return nil
}

// WithLogger sets the logger shared by every layer. A nil logger keeps the default.
func WithLogger(logger *slog.Logger) func(*App) error {
	return func(app *App) error {
		if logger != nil {
			app.Logger = logger
		}
		return nil
	}
}

// WithConfigDir creates appConfigDir if needed and loads config.yaml from it,
// writing the defaults on first run.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		_, err := os.ReadDir(appConfigDir)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("checking if directory exists %s: %w", appConfigDir, err)
			}
			app.Logger.Info("creating config dir", "dir", appConfigDir)
			if err := os.MkdirAll(appConfigDir, 0700); err != nil {
				return fmt.Errorf("creating config dir %s: %w", appConfigDir, err)
			}
		}
		app.ConfigDir = appConfigDir

		cfg, err := loadConfig(appConfigDir)
		if err != nil {
			return err
		}
		app.Config = cfg
		return nil
	}
}

// WithEndpoint overrides the configured endpoint for this app only. It requires WithConfigDir
// and must come before WithGateway.
func WithEndpoint(endpoint string) func(*App) error {
	return func(app *App) error {
		if app.Config == nil {
			return errors.New("endpoint override requires a config dir")
		}
		if err := validateEndpoint(endpoint); err != nil {
			return err
		}
		app.Config.Endpoint = endpoint
		return nil
	}
}

// WithClock sets the time source used to stamp new favorites.
func WithClock(now func() time.Time) func(*App) error {
	return func(app *App) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		app.now = now
		return nil
	}
}

// WithStore opens the SQLite database in the config directory and uses it for favorites and secrets.
// The master key sealing the secrets is loaded from the config directory or created on first run.
// It requires WithConfigDir.
func WithStore() func(*App) error {
	return func(app *App) error {
		if app.Config == nil {
			return errors.New("store requires a config dir")
		}

		key, created, err := loadOrCreateMasterKey(app.ConfigDir)
		if err != nil {
			return err
		}
		if created {
			app.Logger.Info("master key does not exist, created a new one", "fingerprint", keyFingerprint(key))
		} else {
			app.Logger.Debug("loaded existing master key", "fingerprint", keyFingerprint(key))
		}

		dbConn, err := db.New(path.Join(app.ConfigDir, app.Config.DatabaseName))
		if err != nil {
			return fmt.Errorf("opening database : %w", err)
		}
		repo, err := db.NewRepo(dbConn, db.WithLogger(app.Logger), db.WithMasterKey(key))
		if err != nil {
			dbConn.Close()
			return fmt.Errorf("creating repo : %w", err)
		}

		if err := app.closeStore(); err != nil {
			repo.Close()
			return err
		}
		app.favorites = repo
		app.secrets = repo
		app.storeCloser = repo.Close
		return nil
	}
}

// WithStores injects the favorites and secret stores. The caller keeps ownership of both.
func WithStores(favorites domain.FavoritesStore, secrets domain.SecretStore) func(*App) error {
	return func(app *App) error {
		if favorites == nil || secrets == nil {
			return errors.New("stores must not be nil")
		}
		if err := app.closeStore(); err != nil {
			return err
		}
		app.favorites = favorites
		app.secrets = secrets
		return nil
	}
}

// WithGateway builds the GraphQL client from the loaded config, authenticating with the stored token.
// It requires WithConfigDir and a store.
func WithGateway(options ...func(*gateway.Client) error) func(*App) error {
	return func(app *App) error {
		if app.Config == nil {
			return errors.New("gateway requires a config dir")
		}
		if app.secrets == nil {
			return errors.New("gateway requires a secret store")
		}

		base := []func(*gateway.Client) error{
			gateway.WithLogger(app.Logger),
			gateway.WithTimeout(app.Config.RequestTimeout),
			gateway.WithTLSFingerprint(app.Config.TLSFingerprint),
			gateway.WithTokenSource(app.secrets),
		}
		client, err := gateway.New(app.Config.Endpoint, append(base, options...)...)
		if err != nil {
			return fmt.Errorf("creating gateway : %w", err)
		}
		app.gateway = client
		return nil
	}
}

// WithRemoteGateway injects the remote API client.
func WithRemoteGateway(gw RemoteGateway) func(*App) error {
	return func(app *App) error {
		if gw == nil {
			return errors.New("gateway is nil")
		}
		app.gateway = gw
		return nil
	}
}

// WithEffectBuffer overrides the configured presenter effect buffer.
func WithEffectBuffer(size int) func(*App) error {
	return func(app *App) error {
		if size < 0 {
			return fmt.Errorf("effect buffer must not be negative, got %d", size)
		}
		app.effectBuffer = &size
		return nil
	}
}
