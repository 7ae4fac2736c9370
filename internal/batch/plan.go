package batch

import (
	"slices"

	"github.com/masonlet/starlet-setup/internal/workspace"
)

// DefaultModules returns the standard Starlet library modules in dependency
// order. Each call returns a fresh slice.
func DefaultModules() []string {
	return []string{
		"starlet-math",
		"starlet-logger",
		"starlet-controls",
		"starlet-scene",
		"starlet-graphics",
		"starlet-serializer",
		"starlet-engine",
	}
}

// PlanModules returns the module order for a batch: override replaces defaults
// when non-empty, and leaf always comes last.
func PlanModules(defaults, override []string, leaf string) []string {
	base := defaults
	if len(override) > 0 {
		base = override
	}
	out := slices.Clone(base)
	return append(out, leaf)
}

// Plan is a composed batch workspace.
type Plan struct {
	Entries        []*workspace.Entry
	Root           string
	OutputPath     string
	DescriptorPath string
}

// Names returns the directory names of the entries in order.
func (p *Plan) Names() []string {
	names := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		names = append(names, e.Reference.DirName)
	}
	return names
}
