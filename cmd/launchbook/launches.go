package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
	"github.com/tfkr-ae/launchbook/presenter/detail"
	"github.com/tfkr-ae/launchbook/presenter/launches"
)

func newLaunchesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launches",
		Short: "List launches",
		Long: `List every launch reported by the API in server order.

Favorite launches are marked with a star.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.NewLaunchesPresenter()
			if err != nil {
				return err
			}

			state, err := awaitState(cmd.Context(), p.Watch(cmd.Context()), func(s launches.State) bool {
				switch s.Content.(type) {
				case presenter.Loaded[[]domain.Launch], presenter.Failed[[]domain.Launch]:
					return true
				}
				return false
			})
			if err != nil {
				return err
			}
			if failure := presenter.MessageOf(state.Content); failure != "" {
				return errors.New(failure)
			}
			list, _ := presenter.ValueOf(state.Content)

			// The favorites subscription may not have reported yet, read the current set directly.
			favorites, err := first(cmd.Context(), app.UseCases.GetFavoriteLaunches.Execute)
			if err != nil {
				return err
			}
			favoriteIDs := make(map[string]struct{}, len(favorites))
			for _, l := range favorites {
				favoriteIDs[l.ID] = struct{}{}
			}

			views := make([]launchView, 0, len(list))
			for _, l := range list {
				_, favorite := favoriteIDs[l.ID]
				views = append(views, newLaunchView(l, favorite))
			}

			return render(cmd.OutOrStdout(), opts.output, views, func(w io.Writer) error {
				if len(views) == 0 {
					_, err := fmt.Fprintln(w, "No launches found.")
					return err
				}
				return writeLaunchTable(w, views)
			})
		},
	}
}

func newLaunchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "launch <id>",
		Short: "Show one launch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.NewDetailPresenter()
			if err != nil {
				return err
			}
			p.Handle(detail.LoadDetail{ID: args[0]})

			state, err := awaitState(cmd.Context(), p.Watch(cmd.Context()), func(s detail.State) bool {
				switch s.Content.(type) {
				case presenter.Loaded[*domain.LaunchDetail], presenter.Failed[*domain.LaunchDetail]:
					return true
				}
				return false
			})
			if err != nil {
				return err
			}
			if failure := presenter.MessageOf(state.Content); failure != "" {
				return errors.New(failure)
			}
			launch, _ := presenter.ValueOf(state.Content)

			favorite, err := first(cmd.Context(), func(ctx context.Context) (<-chan bool, error) {
				return app.UseCases.IsFavorite.Execute(ctx, launch.ID)
			})
			if err != nil {
				return err
			}

			view := detailView{
				launchView: newLaunchView(launch.Launch(), favorite),
				RocketID:   launch.RocketID,
				Booked:     launch.IsBooked,
			}
			return render(cmd.OutOrStdout(), opts.output, view, func(w io.Writer) error {
				return writeDetail(w, view)
			})
		},
	}
}

func writeDetail(w io.Writer, v detailView) error {
	booked := "no"
	if v.Booked {
		booked = paint(w, colorGreen, "yes")
	}
	favorite := "no"
	if v.Favorite {
		favorite = paint(w, colorYellow, "yes")
	}
	rocket := dash(v.Rocket)
	if v.RocketType != "" {
		rocket += " (" + v.RocketType + ")"
	}

	_, err := fmt.Fprintf(w, "%s\n  id:       %s\n  site:     %s\n  rocket:   %s\n  patch:    %s\n  booked:   %s\n  favorite: %s\n",
		v.Mission, v.ID, dash(v.Site), rocket, dash(v.MissionPatch), booked, favorite)
	return err
}
