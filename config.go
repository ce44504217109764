package launchbook

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	envPrefix  = "LAUNCHBOOK"

	// DefaultEndpoint is the public launch API.
	DefaultEndpoint     = "https://apollo-fullstack-tutorial.herokuapp.com/graphql"
	DefaultDatabaseName = "launchbook.db"
)

// Config is the persisted application configuration, stored as config.yaml in the config directory.
// Every key can be overridden from the environment with the LAUNCHBOOK_ prefix, e.g. LAUNCHBOOK_ENDPOINT.
type Config struct {
	viper          *viper.Viper
	Endpoint       string        `mapstructure:"endpoint"`        // GraphQL endpoint URL
	DatabaseName   string        `mapstructure:"database_name"`   // SQLite file name inside the config dir
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // Per request timeout
	EffectBuffer   int           `mapstructure:"effect_buffer"`   // Presenter effect channel capacity
	TLSFingerprint string        `mapstructure:"tls_fingerprint"` // "" for the Go TLS stack, "chrome" for a Chrome ClientHello
}

// DefaultConfigDir returns the per user configuration directory for launchbook.
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting user config dir : %w", err)
	}
	return filepath.Join(dir, "launchbook"), nil
}

// loadConfig reads config.yaml from configDir, writing one with the defaults on first run.
func loadConfig(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("endpoint", DefaultEndpoint)
	v.SetDefault("database_name", DefaultDatabaseName)
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("effect_buffer", 16)
	v.SetDefault("tls_fingerprint", "")

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file : %w", err)
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
	}

	cfg := &Config{viper: v}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return err
	}
	if cfg.DatabaseName == "" {
		return errors.New("database_name is empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.EffectBuffer < 0 {
		return fmt.Errorf("effect_buffer must not be negative, got %d", cfg.EffectBuffer)
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parsing endpoint %q : %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %q is not an http(s) url", endpoint)
	}
	return nil
}

// SetEndpoint validates endpoint and persists it to config.yaml.
// The change applies to gateways created afterwards.
func (cfg *Config) SetEndpoint(endpoint string) error {
	if err := validateEndpoint(endpoint); err != nil {
		return err
	}
	cfg.viper.Set("endpoint", endpoint)
	if err := cfg.viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	if err := cfg.viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return nil
}

// File returns the path of the config file in use.
func (cfg *Config) File() string {
	return cfg.viper.ConfigFileUsed()
}
