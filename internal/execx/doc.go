// Package execx runs external tools (git, cmake) on behalf of the orchestrator.
//
// A Runner spawns one process, waits for it and reports its exit code together
// with the combined stdout/stderr. A non-zero exit is not a Go error: callers
// decide what a failed tool means. The only error a Runner returns for a process
// is ToolNotFound, when the executable could not be started at all.
package execx
