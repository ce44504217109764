package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/launchbook/domain"
	"github.com/tfkr-ae/launchbook/presenter"
	"github.com/tfkr-ae/launchbook/presenter/favorites"
)

func loadedFavorites(s favorites.State) bool {
	switch s.Content.(type) {
	case presenter.Loaded[[]domain.Launch], presenter.Failed[[]domain.Launch]:
		return true
	}
	return false
}

func newFavoritesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List favorite launches, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.NewFavoritesPresenter()
			if err != nil {
				return err
			}

			state, err := awaitState(cmd.Context(), p.Watch(cmd.Context()), loadedFavorites)
			if err != nil {
				return err
			}
			if failure := presenter.MessageOf(state.Content); failure != "" {
				return errors.New(failure)
			}
			list, _ := presenter.ValueOf(state.Content)

			count, err := first(cmd.Context(), app.UseCases.GetFavoritesCount.Execute)
			if err != nil {
				return err
			}

			views := make([]launchView, 0, len(list))
			for _, l := range list {
				views = append(views, newLaunchView(l, true))
			}
			return render(cmd.OutOrStdout(), opts.output, views, func(w io.Writer) error {
				if count == 0 {
					_, err := fmt.Fprintln(w, "No favorites yet.")
					return err
				}
				if err := writeLaunchTable(w, views); err != nil {
					return err
				}
				_, err := fmt.Fprintln(w, paint(w, colorGray, fmt.Sprintf("%d favorite(s)", count)))
				return err
			})
		},
	}
}

func newFavoriteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <id>",
		Short: "Add a launch to the favorites, or remove it if it already is one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			launch, err := app.UseCases.GetLaunchDetail.Execute(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			added, err := app.UseCases.ToggleFavorite.Execute(cmd.Context(), launch.Launch())
			if err != nil {
				return err
			}

			name := launch.Launch().DisplayName()
			if added {
				return message(cmd.OutOrStdout(), opts.output, colorYellow, fmt.Sprintf("Added %s to favorites", name))
			}
			return message(cmd.OutOrStdout(), opts.output, colorGray, fmt.Sprintf("Removed %s from favorites", name))
		},
	}
}

func newUnfavoriteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unfavorite <id>",
		Short: "Remove a launch from the favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			p, err := app.NewFavoritesPresenter()
			if err != nil {
				return err
			}

			state, err := awaitState(cmd.Context(), p.Watch(cmd.Context()), loadedFavorites)
			if err != nil {
				return err
			}
			if failure := presenter.MessageOf(state.Content); failure != "" {
				return errors.New(failure)
			}
			list, _ := presenter.ValueOf(state.Content)

			for _, l := range list {
				if l.ID != args[0] {
					continue
				}
				p.Handle(favorites.OnRemoveFavorite{Launch: l})

				// A failed removal is only logged, so bound the wait.
				ctx, cancel := context.WithTimeout(cmd.Context(), app.Config.RequestTimeout)
				defer cancel()
				effect, err := awaitEffect(ctx, p.Effects())
				if err != nil {
					return fmt.Errorf("removing %s from favorites : %w", l.DisplayName(), err)
				}
				if removed, ok := effect.(favorites.ShowRemoved); ok {
					return message(cmd.OutOrStdout(), opts.output, colorGray, fmt.Sprintf("Removed %s from favorites", removed.Name))
				}
				return fmt.Errorf("unexpected effect %T", effect)
			}
			return fmt.Errorf("launch %s is not a favorite", args[0])
		},
	}
}
