package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/launchbook/presenter/booking"
)

// runBooking sends intents to a fresh booking presenter and reports its next effect.
func runBooking(cmd *cobra.Command, opts *globalOptions, intents ...booking.Intent) error {
	app, err := openApp(cmd, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	p, err := app.NewBookingPresenter()
	if err != nil {
		return err
	}
	for _, intent := range intents {
		p.Handle(intent)
	}

	// Validation failures only touch the state.
	if emailError := p.State().EmailError; emailError != "" {
		return errors.New(emailError)
	}

	effect, err := awaitEffect(cmd.Context(), p.Effects())
	if err != nil {
		return err
	}
	switch effect := effect.(type) {
	case booking.ShowSuccess:
		return message(cmd.OutOrStdout(), opts.output, colorGreen, effect.Message)
	case booking.ShowError:
		return errors.New(effect.Message)
	default:
		return fmt.Errorf("unexpected effect %T", effect)
	}
}

func newLoginCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in with an email address",
		Long: `Log in with an email address. The API creates the user on first login.

The session token is stored encrypted in the config directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBooking(cmd, opts,
				booking.OnEmailChange{Email: args[0]},
				booking.OnLoginClick{},
			)
		},
	}
}

func newLogoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.UseCases.Logout.Execute(); err != nil {
				return err
			}
			return message(cmd.OutOrStdout(), opts.output, colorGray, "Logged out")
		},
	}
}

type sessionView struct {
	LoggedIn bool   `yaml:"logged_in"`
	Email    string `yaml:"email,omitempty"`
}

func newWhoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			loggedIn, err := app.UseCases.CheckAuthStatus.Execute()
			if err != nil {
				return err
			}
			view := sessionView{LoggedIn: loggedIn}
			if loggedIn {
				if view.Email, err = app.UseCases.GetUserEmail.Execute(); err != nil {
					return err
				}
			}

			return render(cmd.OutOrStdout(), opts.output, view, func(w io.Writer) error {
				if !view.LoggedIn {
					_, err := fmt.Fprintln(w, "Not logged in.")
					return err
				}
				_, err := fmt.Fprintf(w, "Logged in as %s\n", dash(view.Email))
				return err
			})
		},
	}
}

func newBookCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "book <id>[,<id>...]...",
		Short: "Book trips on one or more launches",
		Long: `Book trips on one or more launches. Ids may be given as separate
arguments or comma separated, e.g. "launchbook book 1,2 3".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBooking(cmd, opts,
				booking.OnLaunchIDChange{Input: strings.Join(args, ",")},
				booking.OnBookClick{},
			)
		},
	}
}

func newCancelCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel the trip booked on a launch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBooking(cmd, opts, booking.OnCancelClick{LaunchID: args[0]})
		},
	}
}
