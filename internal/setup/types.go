package setup

import (
	"time"

	"github.com/masonlet/starlet-setup/internal/cmake"
	"github.com/masonlet/starlet-setup/internal/reference"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// Mode distinguishes single-repository runs from batch runs.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Status is the final state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// SingleRequest sets up one repository in WorkDir.
type SingleRequest struct {
	Repository string
	Protocol   reference.Protocol
	WorkDir    string
	Build      cmake.Options
	Update     bool
}

// BatchRequest sets up Leaf together with its library modules under
// WorkDir/BatchDir. Repos, when non-empty, replaces the default module list.
type BatchRequest struct {
	Owner    string
	Leaf     string
	Repos    []string
	Protocol reference.Protocol
	WorkDir  string
	BatchDir string
	Build    cmake.Options
	Update   bool
}

// Result describes a finished (or aborted) run.
type Result struct {
	RunID          string
	Mode           Mode
	Target         string
	Entries        []*workspace.Entry
	SourceRoot     string
	BuildPath      string
	DescriptorPath string
	Build          *cmake.Report
	Duration       time.Duration
	Status         Status
}
