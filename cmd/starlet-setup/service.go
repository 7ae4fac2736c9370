package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/masonlet/starlet-setup/internal/config"
	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/git"
	"github.com/masonlet/starlet-setup/internal/history"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/metrics"
	"github.com/masonlet/starlet-setup/internal/setup"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// newService builds the setup service for the current config. The returned
// func flushes metrics and closes history; call it once the run finished.
func (g *Global) newService() (*setup.Service, func(), error) {
	runner := g.Runner
	if runner == nil {
		r := execx.NewExecRunner(g.Verbose)
		r.Stream = g.Stdout
		runner = r
	}

	var cloner git.Cloner
	switch g.Config.Git.Backend {
	case git.BackendNative:
		var progress io.Writer
		if g.Verbose {
			progress = g.Stdout
		}
		cloner = git.NewNativeClient(g.Config.Git.SSHKeyPath, progress)
	default:
		cloner = git.NewCLIClient(runner)
	}
	svc := setup.NewService(runner, cloner).WithBackend(g.Config.Git.Backend)

	var closers []func()
	if g.MetricsFile != "" {
		rec := metrics.NewPrometheusRecorder(nil)
		svc.WithRecorder(rec)
		path := g.MetricsFile
		closers = append(closers, func() {
			if err := rec.WriteTextfile(path); err != nil {
				slog.Warn("Failed to write metrics file", logfields.Path(path), logfields.Error(err))
			}
		})
	}
	if g.Config.History.Enabled {
		store, err := openHistory(g.Config)
		if err != nil {
			return nil, nil, err
		}
		svc.WithHistory(store)
		closers = append(closers, func() { _ = store.Close() })
	}

	return svc, func() {
		for _, c := range closers {
			c()
		}
	}, nil
}

// historyPath returns the configured ledger path or the per-user default.
func historyPath(cfg *config.Config) string {
	if cfg.History.Path != "" {
		return cfg.History.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "starlet-setup", "history.db")
}

func openHistory(cfg *config.Config) (*history.SQLiteStore, error) {
	path := historyPath(cfg)
	if err := workspace.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return history.NewSQLiteStore(path)
}
