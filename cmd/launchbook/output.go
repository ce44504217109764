package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/tfkr-ae/launchbook/domain"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

var errPresenterClosed = errors.New("presenter closed before finishing")

// isTerminal returns true if w is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// paint wraps s in color when w is a terminal.
func paint(w io.Writer, color, s string) string {
	if !isTerminal(w) {
		return s
	}
	return color + s + colorReset
}

// render writes v as YAML, or calls text for the text format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	if format != outputYAML {
		return text(w)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml : %w", err)
	}
	return enc.Close()
}

// message prints a one line status. In YAML mode it is a single "message" document.
func message(w io.Writer, format, color, text string) error {
	return render(w, format, map[string]string{"message": text}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, paint(w, color, text))
		return err
	})
}

// awaitState reads snapshots until done accepts one.
func awaitState[S any](ctx context.Context, states <-chan S, done func(S) bool) (S, error) {
	var zero S
	for {
		select {
		case s, ok := <-states:
			if !ok {
				return zero, errPresenterClosed
			}
			if done(s) {
				return s, nil
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// awaitEffect returns the next effect.
func awaitEffect[E any](ctx context.Context, effects <-chan E) (E, error) {
	var zero E
	select {
	case e, ok := <-effects:
		if !ok {
			return zero, errPresenterClosed
		}
		return e, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// first returns the first value of a stream and stops watching it.
func first[T any](ctx context.Context, watch func(context.Context) (<-chan T, error)) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var zero T
	ch, err := watch(ctx)
	if err != nil {
		return zero, err
	}
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, errors.New("stream closed before the first value")
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

type launchView struct {
	ID           string `yaml:"id"`
	Mission      string `yaml:"mission"`
	Site         string `yaml:"site,omitempty"`
	Rocket       string `yaml:"rocket,omitempty"`
	RocketType   string `yaml:"rocket_type,omitempty"`
	MissionPatch string `yaml:"mission_patch,omitempty"`
	Favorite     bool   `yaml:"favorite"`
}

type detailView struct {
	launchView `yaml:",inline"`
	RocketID   string `yaml:"rocket_id,omitempty"`
	Booked     bool   `yaml:"booked"`
}

func newLaunchView(l domain.Launch, favorite bool) launchView {
	return launchView{
		ID:           l.ID,
		Mission:      l.DisplayName(),
		Site:         l.Site,
		Rocket:       l.RocketName,
		RocketType:   l.RocketType,
		MissionPatch: l.MissionPatch,
		Favorite:     favorite,
	}
}

func writeLaunchTable(w io.Writer, views []launchView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMISSION\tSITE\tROCKET\t")
	for _, v := range views {
		mark := ""
		if v.Favorite {
			mark = paint(w, colorYellow, "*")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Mission, dash(v.Site), dash(v.Rocket), mark)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
