package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/launchbook"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configDir string
	endpoint  string
	output    string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "launchbook",
		Short: "launchbook - browse, favorite and book space launches",
		Long: `launchbook browses launches from the launch GraphQL API, keeps a local
list of favorite launches and books or cancels trips for the logged in user.

Favorites and the session live in the config directory and survive restarts.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputText, outputYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q, use %s or %s", opts.output, outputText, outputYAML)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate("launchbook version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configDir, "config-dir", "", "configuration directory (default is the user config dir)")
	flags.StringVar(&opts.endpoint, "endpoint", "", "GraphQL endpoint for this invocation, overrides the config")
	flags.StringVarP(&opts.output, "output", "o", outputText, "output format: text or yaml")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and internal events to stderr")

	rootCmd.AddCommand(
		newLaunchesCmd(opts),
		newLaunchCmd(opts),
		newFavoritesCmd(opts),
		newFavoriteCmd(opts),
		newUnfavoriteCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newBookCmd(opts),
		newCancelCmd(opts),
		newConfigCmd(opts),
	)
	return rootCmd
}

// openApp builds the application from the global flags. The caller must Close it.
func openApp(cmd *cobra.Command, opts *globalOptions) (*launchbook.App, error) {
	dir := opts.configDir
	if dir == "" {
		var err error
		dir, err = launchbook.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	options := []func(*launchbook.App) error{
		launchbook.WithLogger(logger),
		launchbook.WithConfigDir(dir),
		launchbook.WithStore(),
	}
	if opts.endpoint != "" {
		options = append(options, launchbook.WithEndpoint(opts.endpoint))
	}
	options = append(options, launchbook.WithGateway())

	return launchbook.New(options...)
}
