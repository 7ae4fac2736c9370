package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/git"
	"github.com/masonlet/starlet-setup/internal/logfields"
	"github.com/masonlet/starlet-setup/internal/metrics"
	"github.com/masonlet/starlet-setup/internal/reference"
)

// Entry is one repository placed in a workspace.
type Entry struct {
	Reference   reference.Reference
	Path        string
	Acquired    bool
	Preexisting bool
}

// markAcquired records the outcome once; later calls are ignored.
func (e *Entry) markAcquired(preexisting bool) {
	if e.Acquired {
		return
	}
	e.Acquired = true
	e.Preexisting = preexisting
}

// Acquirer ensures working copies exist.
type Acquirer struct {
	cloner   git.Cloner
	recorder metrics.Recorder
	update   bool
}

// NewAcquirer creates an acquirer cloning with cloner.
func NewAcquirer(cloner git.Cloner) *Acquirer {
	return &Acquirer{cloner: cloner, recorder: metrics.NoopRecorder{}}
}

// WithRecorder attaches a metrics recorder (fluent helper).
func (a *Acquirer) WithRecorder(r metrics.Recorder) *Acquirer {
	if r != nil {
		a.recorder = r
	}
	return a
}

// WithUpdate makes the acquirer fast-forward checkouts it reuses.
func (a *Acquirer) WithUpdate(update bool) *Acquirer { a.update = update; return a }

// Acquire ensures a working copy of ref exists at parentDir/ref.DirName.
func (a *Acquirer) Acquire(ctx context.Context, ref reference.Reference, parentDir string) (*Entry, error) {
	if err := ValidateDirName(ref.DirName); err != nil {
		return nil, err
	}
	parent, err := filepath.Abs(parentDir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve workspace path").
			WithContext(errors.KeyPath, parentDir).
			Build()
	}
	if err := EnsureDir(parent); err != nil {
		return nil, err
	}

	entry := &Entry{Reference: ref, Path: filepath.Join(parent, ref.DirName)}
	info, err := os.Stat(entry.Path)
	switch {
	case err == nil && !info.IsDir():
		return nil, errors.CloneError(ref.Slug(), ref.URL).
			WithContext(errors.KeyPath, entry.Path).
			WithContext(errors.KeyHint, "a file is in the way of the checkout; move it and re-run").
			Build()
	case err == nil:
		empty, eerr := isEmptyDir(entry.Path)
		if eerr != nil {
			return nil, errors.WrapError(eerr, errors.CategoryFileSystem, "failed to read checkout directory").
				WithContext(errors.KeyPath, entry.Path).
				Build()
		}
		if !empty {
			return a.reuse(ctx, entry)
		}
	case !os.IsNotExist(err):
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to inspect checkout directory").
			WithContext(errors.KeyPath, entry.Path).
			Build()
	}

	slog.Info("Cloning repository", logfields.Repository(ref.Slug()), logfields.URL(ref.URL), logfields.Path(entry.Path))
	start := time.Now()
	err = a.cloner.Clone(ctx, ref.URL, entry.Path)
	a.recorder.ObserveCloneDuration(ref.Slug(), time.Since(start), err == nil)
	if err != nil {
		return nil, wrapCloneError(ref, entry.Path, err)
	}
	entry.markAcquired(false)
	slog.Info("Repository cloned", logfields.Repository(ref.Slug()), logfields.Duration(time.Since(start)))
	return entry, nil
}

func (a *Acquirer) reuse(ctx context.Context, entry *Entry) (*Entry, error) {
	ref := entry.Reference
	if !git.IsRepository(entry.Path) {
		slog.Warn("Existing directory is not a git checkout; reusing it as-is (it may be an interrupted clone)",
			logfields.Repository(ref.Slug()), logfields.Path(entry.Path))
	}
	if a.update {
		slog.Info("Updating existing repository", logfields.Repository(ref.Slug()), logfields.Path(entry.Path))
		if err := a.cloner.Pull(ctx, entry.Path); err != nil {
			return nil, wrapCloneError(ref, entry.Path, err)
		}
	} else {
		slog.Info("Repository already exists, reusing", logfields.Repository(ref.Slug()), logfields.Path(entry.Path))
	}
	a.recorder.IncReusedCheckout()
	entry.markAcquired(true)
	return entry, nil
}

// wrapCloneError gives every acquisition failure the clone category and the
// reference; missing tools keep their own category.
func wrapCloneError(ref reference.Reference, path string, err error) error {
	if errors.HasCategory(err, errors.CategoryToolNotFound) {
		return err
	}
	b := errors.CloneError(ref.Slug(), ref.URL).WithCause(err)
	if ce, ok := errors.AsClassified(err); ok {
		b.WithContextMap(ce.Context()).WithOutput(ce.Output())
	}
	return b.WithContext(errors.KeyReference, ref.Slug()).
		WithContext(errors.KeyPath, path).
		Build()
}
