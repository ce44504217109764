package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type configView struct {
	File           string `yaml:"file"`
	Endpoint       string `yaml:"endpoint"`
	DatabaseName   string `yaml:"database_name"`
	RequestTimeout string `yaml:"request_timeout"`
	EffectBuffer   int    `yaml:"effect_buffer"`
	TLSFingerprint string `yaml:"tls_fingerprint"`
}

func newConfigCmd(opts *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg := app.Config
			view := configView{
				File:           cfg.File(),
				Endpoint:       cfg.Endpoint,
				DatabaseName:   cfg.DatabaseName,
				RequestTimeout: cfg.RequestTimeout.String(),
				EffectBuffer:   cfg.EffectBuffer,
				TLSFingerprint: cfg.TLSFingerprint,
			}
			return render(cmd.OutOrStdout(), opts.output, view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "file:            %s\nendpoint:        %s\ndatabase_name:   %s\nrequest_timeout: %s\neffect_buffer:   %d\ntls_fingerprint: %s\n",
					view.File, view.Endpoint, view.DatabaseName, view.RequestTimeout, view.EffectBuffer, dash(view.TLSFingerprint))
				return err
			})
		},
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "set-endpoint <url>",
		Short: "Persist the GraphQL endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Config.SetEndpoint(args[0]); err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), opts.output, colorGreen, "Endpoint set to "+args[0])
		},
	})
	return configCmd
}
