package execx

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is what a finished process reported.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner is the capability the orchestrator uses to invoke external tools.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs commands with os/exec. Output is always captured; when
// Verbose is set it is also streamed unfiltered to Stream.
type ExecRunner struct {
	Verbose bool
	Stream  io.Writer
}

// NewExecRunner returns an ExecRunner streaming to stdout when verbose.
func NewExecRunner(verbose bool) *ExecRunner {
	return &ExecRunner{Verbose: verbose, Stream: os.Stdout}
}

// LookPath reports where name is found on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Run executes cmd and blocks until it exits.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if _, err := exec.LookPath(cmd.Name); err != nil {
		return Result{}, errors.ToolNotFoundError(cmd.Name).WithCause(err).Build()
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if r.Verbose && r.Stream != nil {
		out = io.MultiWriter(&buf, r.Stream)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Stdout = out
	c.Stderr = out

	slog.Debug("Running command", slog.String("command", cmd.String()), logfields.Path(cmd.Dir))
	start := time.Now()
	err := c.Run()
	res := Result{Output: buf.String(), Duration: time.Since(start)}

	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		if res.ExitCode < 0 {
			// killed by a signal
			res.ExitCode = 1
		}
		return res, nil
	}
	if stderrors.Is(err, exec.ErrNotFound) {
		return res, errors.ToolNotFoundError(cmd.Name).WithCause(err).Build()
	}
	return res, errors.NewError(errors.CategoryInternal, "failed to start "+cmd.Name).
		WithCause(err).
		WithContext(errors.KeyPath, cmd.Dir).
		Build()
}

// CheckTools verifies that every tool is on PATH and reports all missing ones at once.
func CheckTools(r Runner, tools ...string) error {
	var missing []string
	for _, t := range tools {
		if path, err := r.LookPath(t); err != nil {
			missing = append(missing, t)
		} else {
			slog.Debug("Found tool", slog.String("tool", t), logfields.Path(path))
		}
	}
	if len(missing) > 0 {
		return errors.ToolNotFoundError(missing...).Build()
	}
	return nil
}
