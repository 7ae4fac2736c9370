package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// HistoryCmd lists recorded runs, newest first.
type HistoryCmd struct {
	Limit int    `short:"l" help:"Maximum number of runs to show (0 = all)" default:"20"`
	ID    string `arg:"" optional:"" help:"Show a single run"`
}

func (c *HistoryCmd) Run(g *Global) error {
	if !g.Config.History.Enabled {
		return errors.ConfigError("run history is disabled").
			WithContext(errors.KeyHint, "set history.enabled: true in "+requireConfigPath(g)).
			Build()
	}
	store, err := openHistory(g.Config)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if c.ID != "" {
		run, err := store.Get(g.Context(), c.ID)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(g.Stdout, "Run:       %s\n", run.ID)
		_, _ = fmt.Fprintf(g.Stdout, "Mode:      %s\n", run.Mode)
		_, _ = fmt.Fprintf(g.Stdout, "Target:    %s\n", run.Target)
		_, _ = fmt.Fprintf(g.Stdout, "Modules:   %v\n", run.Modules)
		_, _ = fmt.Fprintf(g.Stdout, "Build:     %s (%s)\n", run.BuildPath, run.BuildType)
		_, _ = fmt.Fprintf(g.Stdout, "Status:    %s (exit %d)\n", run.Status, run.ExitCode)
		_, _ = fmt.Fprintf(g.Stdout, "Started:   %s\n", run.StartedAt.Format(time.RFC3339))
		_, _ = fmt.Fprintf(g.Stdout, "Duration:  %s\n", run.Duration.Round(time.Millisecond))
		if run.Error != "" {
			_, _ = fmt.Fprintf(g.Stdout, "Error:     %s\n", run.Error)
		}
		return nil
	}

	runs, err := store.List(g.Context(), c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(g.Stdout, "No runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(g.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tTARGET\tSTATUS\tDURATION")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Mode, r.Target, r.Status,
			r.Duration.Round(time.Millisecond))
	}
	return tw.Flush()
}
