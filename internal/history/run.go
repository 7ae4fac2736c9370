package history

import (
	"context"
	"time"
)

// Status is the final state of a recorded run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded invocation.
type Run struct {
	ID        string
	Mode      string
	Target    string
	Modules   []string
	BuildPath string
	BuildType string
	Status    Status
	ExitCode  int
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

// Store persists runs.
type Store interface {
	Record(ctx context.Context, run Run) error
	List(ctx context.Context, limit int) ([]Run, error)
	Get(ctx context.Context, id string) (*Run, error)
	Close() error
}
