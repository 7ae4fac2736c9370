package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Stable process exit codes. These are part of the CLI contract.
const (
	ExitOK              = 0
	ExitGeneral         = 1
	ExitReferenceFormat = 2
	ExitToolNotFound    = 3
	ExitClone           = 4
	ExitConfigure       = 5
	ExitBuild           = 6
	ExitPlanConflict    = 7
	ExitConfig          = 8
	ExitFileSystem      = 9
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if classified, ok := AsClassified(err); ok {
		return exitCodeFromCategory(classified.Category())
	}
	return ExitGeneral
}

func exitCodeFromCategory(category ErrorCategory) int {
	switch category {
	case CategoryReference:
		return ExitReferenceFormat
	case CategoryToolNotFound:
		return ExitToolNotFound
	case CategoryClone:
		return ExitClone
	case CategoryConfigure:
		return ExitConfigure
	case CategoryBuild:
		return ExitBuild
	case CategoryPlanConflict:
		return ExitPlanConflict
	case CategoryConfig:
		return ExitConfig
	case CategoryFileSystem:
		return ExitFileSystem
	default:
		return ExitGeneral
	}
}

// FormatError formats an error for user-facing display. Verbose output includes
// the full cause chain and any captured tool output; otherwise a single line.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	if a.verbose {
		b.WriteString("Error: " + err.Error())
		if out := strings.TrimSpace(classified.Output()); out != "" {
			b.WriteString("\n--- tool output ---\n")
			b.WriteString(out)
		}
	} else {
		b.WriteString("Error: " + classified.Message())
		if path, ok := classified.Context().GetString(KeyPath); ok {
			b.WriteString(" (" + path + ")")
		}
		if classified.Output() != "" {
			b.WriteString(" [use -v for tool output]")
		}
	}
	if hint, ok := classified.Context().GetString(KeyHint); ok && hint != "" {
		b.WriteString("\nHint: " + hint)
	}
	return b.String()
}

// Report logs err, prints the user-facing message to w and returns the exit code.
func (a *CLIErrorAdapter) Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	if a.verbose {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(w, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) logError(err error) {
	if classified, ok := AsClassified(err); ok {
		attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
		for k, v := range classified.Context() {
			if k == KeyHint {
				continue
			}
			attrs = append(attrs, slog.Any(k, v))
		}
		a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
		return
	}
	a.logger.Error("Unclassified error", "error", err)
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
