// Package execxtest provides a scripted execx.Runner for tests.
package execxtest

import (
	"context"
	"os/exec"
	"sync"

	"github.com/masonlet/starlet-setup/internal/execx"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
)

// FakeRunner records every command and answers with Handler (exit 0 when nil).
// Tools listed in Missing behave as absent from PATH.
type FakeRunner struct {
	Handler func(cmd execx.Command) (execx.Result, error)
	Missing map[string]bool

	mu    sync.Mutex
	calls []execx.Command
}

// Run records cmd and returns the scripted result.
func (f *FakeRunner) Run(_ context.Context, cmd execx.Command) (execx.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.Missing[cmd.Name] {
		return execx.Result{}, errors.ToolNotFoundError(cmd.Name).WithCause(exec.ErrNotFound).Build()
	}
	if f.Handler == nil {
		return execx.Result{}, nil
	}
	return f.Handler(cmd)
}

// LookPath fails for tools in Missing.
func (f *FakeRunner) LookPath(name string) (string, error) {
	if f.Missing[name] {
		return "", exec.ErrNotFound
	}
	return "/usr/bin/" + name, nil
}

// Calls returns a copy of the recorded commands in order.
func (f *FakeRunner) Calls() []execx.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]execx.Command(nil), f.calls...)
}

// CallsTo returns the recorded commands whose executable is name.
func (f *FakeRunner) CallsTo(name string) []execx.Command {
	var out []execx.Command
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
