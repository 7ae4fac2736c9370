package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyMode       = "mode"
	KeyRepo       = "repository"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyStep       = "step"
	KeyBuildType  = "build_type"
	KeyIndex      = "index"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr     { return slog.String(KeyRunID, id) }
func Mode(m string) slog.Attr       { return slog.String(KeyMode, m) }
func Repository(r string) slog.Attr { return slog.String(KeyRepo, r) }
func URL(u string) slog.Attr        { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Step(s string) slog.Attr       { return slog.String(KeyStep, s) }
func BuildType(t string) slog.Attr  { return slog.String(KeyBuildType, t) }
func Index(i int) slog.Attr         { return slog.Int(KeyIndex, i) }
func ExitCode(code int) slog.Attr   { return slog.Int(KeyExitCode, code) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
