package git

import (
	"context"
	"log/slog"
	"strings"

	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
)

// Backend names accepted in configuration.
const (
	BackendCLI    = "cli"
	BackendNative = "native"
)

// Cloner is the narrow version-control capability the workspace acquirer needs.
type Cloner interface {
	// Clone creates a working copy of url at dest.
	Clone(ctx context.Context, url, dest string) error
	// Pull fast-forwards an existing working copy.
	Pull(ctx context.Context, dir string) error
}

// CLIClient drives the git executable.
type CLIClient struct {
	runner execx.Runner
}

// NewCLIClient creates a git CLI client that runs commands through runner.
func NewCLIClient(runner execx.Runner) *CLIClient { return &CLIClient{runner: runner} }

// Clone runs `git clone <url> <dest>`.
func (c *CLIClient) Clone(ctx context.Context, url, dest string) error {
	slog.Debug("git clone", logfields.URL(url), logfields.Path(dest))
	res, err := c.runner.Run(ctx, execx.Command{Name: "git", Args: []string{"clone", url, dest}})
	if err != nil {
		return err
	}
	if !res.Success() {
		return classifyOutput(errors.NewError(errors.CategoryClone, "git clone failed"), res.Output).
			WithContext(errors.KeyURL, url).
			WithContext(errors.KeyPath, dest).
			WithContext(errors.KeyExitCode, res.ExitCode).
			WithOutput(res.Output).
			Build()
	}
	return nil
}

// Pull runs `git -C <dir> pull --ff-only`.
func (c *CLIClient) Pull(ctx context.Context, dir string) error {
	res, err := c.runner.Run(ctx, execx.Command{Name: "git", Args: []string{"-C", dir, "pull", "--ff-only"}})
	if err != nil {
		return err
	}
	if !res.Success() {
		return classifyOutput(errors.NewError(errors.CategoryClone, "git pull failed"), res.Output).
			WithContext(errors.KeyPath, dir).
			WithContext(errors.KeyExitCode, res.ExitCode).
			WithOutput(res.Output).
			Build()
	}
	return nil
}

// classifyOutput annotates a clone failure with a reason derived from git's output.
func classifyOutput(b *errors.ErrorBuilder, output string) *errors.ErrorBuilder {
	l := strings.ToLower(output)
	switch {
	case strings.Contains(l, "authentication failed") || strings.Contains(l, "permission denied") ||
		strings.Contains(l, "could not read username") || strings.Contains(l, "invalid credentials"):
		b.WithContext("reason", "auth").
			WithContext(errors.KeyHint, "check your credentials, or try the other protocol (--ssh)")
	case strings.Contains(l, "repository not found") || strings.Contains(l, "not found") || strings.Contains(l, "does not exist"):
		b.WithContext("reason", "not_found")
	case strings.Contains(l, "could not resolve host") || strings.Contains(l, "connection reset") ||
		strings.Contains(l, "timed out") || strings.Contains(l, "remote hung up"):
		b.WithContext("reason", "network")
	case strings.Contains(l, "not an empty directory") || strings.Contains(l, "already exists"):
		b.WithContext("reason", "destination_exists")
	}
	return b
}
