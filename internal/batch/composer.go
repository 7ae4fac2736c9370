package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/masonlet/starlet-setup/internal/descriptor"
	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/reference"
	"github.com/masonlet/starlet-setup/internal/workspace"
)

// Acquirer places one repository checkout below a parent directory.
type Acquirer interface {
	Acquire(ctx context.Context, ref reference.Reference, parentDir string) (*workspace.Entry, error)
}

// Composer builds batch workspaces for one owner.
type Composer struct {
	resolver *reference.Resolver
	acquirer Acquirer
	owner    string
	protocol reference.Protocol
	reserved []string
}

// NewComposer returns a composer qualifying bare module names with owner.
func NewComposer(resolver *reference.Resolver, acquirer Acquirer, owner string, protocol reference.Protocol) *Composer {
	if resolver == nil {
		resolver = reference.NewResolver()
	}
	return &Composer{resolver: resolver, acquirer: acquirer, owner: owner, protocol: protocol}
}

// WithReserved adds directory names no module may take, such as the batch
// build directory. The descriptor file name is always reserved. Names are
// compared case-insensitively.
func (c *Composer) WithReserved(names ...string) *Composer {
	c.reserved = append(c.reserved, names...)
	return c
}

func (c *Composer) reservedName(dir string) (string, bool) {
	for _, r := range append([]string{descriptor.FileName}, c.reserved...) {
		if r != "" && strings.EqualFold(dir, r) {
			return r, true
		}
	}
	return "", false
}

// Resolve resolves every module and rejects duplicate or reserved directory
// names. It performs no I/O.
func (c *Composer) Resolve(modules []string) ([]reference.Reference, error) {
	refs := make([]reference.Reference, 0, len(modules))
	seen := make(map[string]int, len(modules))
	for i, m := range modules {
		ref, err := c.resolver.ResolveInOwner(m, c.owner, c.protocol)
		if err != nil {
			return nil, err
		}
		if r, clash := c.reservedName(ref.DirName); clash {
			return nil, errors.ReservedNameError(ref.DirName, r, i).Build()
		}
		if first, dup := seen[ref.DirName]; dup {
			return nil, errors.PlanConflictError(ref.DirName, first, i).Build()
		}
		seen[ref.DirName] = i
		refs = append(refs, ref)
	}
	return refs, nil
}

// Compose acquires modules in order under root and writes the root descriptor.
// A descriptor from an earlier run is removed first. Acquisition stops at the
// first failure; checkouts made before it stay on disk and no descriptor exists.
func (c *Composer) Compose(ctx context.Context, modules []string, root, outputPath string) (*Plan, error) {
	if len(modules) == 0 {
		return nil, errors.ConfigError("batch plan is empty").Build()
	}
	refs, err := c.Resolve(modules)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.NewRoot(root)
	if err != nil {
		return nil, err
	}
	if err := ws.Create(); err != nil {
		return nil, err
	}
	descPath, err := ws.Join(descriptor.FileName)
	if err != nil {
		return nil, err
	}
	removed, err := descriptor.RemoveStale(descPath)
	if err != nil {
		return nil, err
	}
	if removed {
		slog.Debug("Removed descriptor from previous run", logfields.Path(descPath))
	}

	plan := &Plan{Root: ws.Path(), OutputPath: outputPath}
	if !filepath.IsAbs(outputPath) {
		plan.OutputPath = filepath.Join(ws.Path(), outputPath)
	}

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "batch canceled").Build()
		}
		slog.Info("Acquiring module",
			logfields.Index(i+1), slog.Int("total", len(refs)), logfields.Repository(ref.Slug()))
		entry, err := c.acquirer.Acquire(ctx, ref, ws.Path())
		if err != nil {
			return nil, abortError(err, ref, i, len(refs))
		}
		plan.Entries = append(plan.Entries, entry)
	}

	d, err := descriptor.FromPlan(filepath.Base(ws.Path()), ws.Path(), plan.Entries, plan.OutputPath)
	if err != nil {
		return nil, err
	}
	if plan.DescriptorPath, err = d.Write(ws.Path()); err != nil {
		return nil, err
	}
	return plan, nil
}

// abortError names the failed entry and how far the batch got, keeping the
// cause's category, output and context.
func abortError(err error, ref reference.Reference, index, total int) error {
	msg := fmt.Sprintf("batch aborted at entry %d of %d (%s); %d preceding entries acquired",
		index+1, total, ref.Slug(), index)
	b := errors.WrapError(err, errors.GetCategory(err), msg).Fatal()
	if ce, ok := errors.AsClassified(err); ok {
		b.WithContextMap(ce.Context()).WithOutput(ce.Output())
	}
	return b.WithContext(errors.KeyReference, ref.Slug()).
		WithContext("succeeded", index).
		Build()
}
