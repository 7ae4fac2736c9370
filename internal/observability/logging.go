// Package observability carries per-run logging context.
package observability

import (
	"context"
	"log/slog"

	"github.com/masonlet/starlet-setup/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID string
	Mode  string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := extractLogContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithMode adds the run mode (single|batch) to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	lc := extractLogContext(ctx)
	lc.Mode = mode
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

// Attrs returns the slog attributes for the context's LogContext.
func Attrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	var attrs []slog.Attr
	if lc.RunID != "" {
		attrs = append(attrs, logfields.RunID(lc.RunID))
	}
	if lc.Mode != "" {
		attrs = append(attrs, logfields.Mode(lc.Mode))
	}
	return attrs
}

// ScopeDefaultLogger makes the default logger carry ctx's attributes until the
// returned restore func is called. Runs are sequential, so one scope is active at a time.
func ScopeDefaultLogger(ctx context.Context) (restore func()) {
	prev := slog.Default()
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return func() {}
	}
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	slog.SetDefault(prev.With(args...))
	return func() { slog.SetDefault(prev) }
}
