package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/masonlet/starlet-setup/internal/config"
	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/version"
)

// EnvLogLevel overrides the log level (debug, info, warn, error).
const EnvLogLevel = "STARLET_SETUP_LOG_LEVEL"

// Global is bound into every command.
type Global struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner replaces the real toolchain when set.
	Runner execx.Runner
	// WorkDir is where single checkouts and the batch directory go ("" = current directory).
	WorkDir string

	Config      *config.Config
	ConfigPath  string
	Verbose     bool
	MetricsFile string

	ctx context.Context
}

// Context returns the run context, canceled on SIGINT/SIGTERM.
func (g *Global) Context() context.Context {
	if g.ctx == nil {
		return context.Background()
	}
	return g.ctx
}

// CLI definition & global flags.
type CLI struct {
	Verbose     bool             `short:"v" help:"Show tool output and debug logs" default:"${verbose}" env:"STARLET_SETUP_VERBOSE" negatable:""`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics for the run to this file" default:"${metrics_file}" env:"STARLET_SETUP_METRICS_FILE"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Setup       SetupCmd       `cmd:"" default:"withargs" help:"Clone (or reuse) one repository and build it"`
	Batch       BatchCmd       `cmd:"" help:"Clone library modules plus a leaf repository and build them together"`
	Interactive InteractiveCmd `cmd:"" help:"Prompt for every setting, then run"`
	InitConfig  InitConfigCmd  `cmd:"" name:"init-config" help:"Write a default configuration file"`
	Profile     ProfileCmd     `cmd:"" help:"Manage saved module profiles"`
	History     HistoryCmd     `cmd:"" help:"List recorded runs (requires history.enabled)"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(v)); err == nil {
			level = l
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level})))
	g.Verbose = c.Verbose
	g.MetricsFile = c.MetricsFile
	return nil
}

// flagVars exposes config values as flag defaults.
func flagVars(cfg *config.Config) kong.Vars {
	return kong.Vars{
		"version":      version.String(),
		"verbose":      strconv.FormatBool(cfg.Defaults.Verbose),
		"ssh":          strconv.FormatBool(cfg.Defaults.SSH),
		"build_type":   cfg.Defaults.BuildType,
		"build_dir":    cfg.Defaults.BuildDir,
		"batch_dir":    cfg.Defaults.BatchDir,
		"no_build":     strconv.FormatBool(cfg.Defaults.NoBuild),
		"metrics_file": cfg.Metrics.File,
	}
}
