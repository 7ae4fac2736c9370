package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/masonlet/starlet-setup/internal/foundation/errors"
	"github.com/masonlet/starlet-setup/internal/git"
	"github.com/masonlet/starlet-setup/internal/metrics"
	"github.com/masonlet/starlet-setup/internal/reference"
	helpers "github.com/masonlet/starlet-setup/internal/testutil/testutils"
)

// fakeCloner materialises a checkout by writing files into dest.
type fakeCloner struct {
	files  map[string]string
	err    error
	clones []string
	pulls  []string
}

func (f *fakeCloner) Clone(_ context.Context, url, dest string) error {
	f.clones = append(f.clones, url)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Join(dest, ".git"), 0o750); err != nil {
		return err
	}
	for name, content := range f.files {
		p := filepath.Join(dest, name)
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCloner) Pull(_ context.Context, dir string) error {
	f.pulls = append(f.pulls, dir)
	return f.err
}

func mustResolve(t *testing.T, raw string) reference.Reference {
	t.Helper()
	ref, err := reference.NewResolver().Resolve(raw, reference.ProtocolHTTPS)
	require.NoError(t, err)
	return ref
}

func TestAcquire_ClonesMissingCheckout(t *testing.T) {
	parent := t.TempDir()
	cloner := &fakeCloner{files: map[string]string{"CMakeLists.txt": "project(task)\n"}}
	rec := metrics.NewMemoryRecorder()
	ref := mustResolve(t, "masonlet/task-tracker")

	entry, err := NewAcquirer(cloner).WithRecorder(rec).Acquire(t.Context(), ref, parent)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parent, "task-tracker"), entry.Path)
	assert.True(t, entry.Acquired)
	assert.False(t, entry.Preexisting)
	assert.Equal(t, []string{"https://github.com/masonlet/task-tracker.git"}, cloner.clones)
	assert.True(t, rec.Clones["masonlet/task-tracker"])
	helpers.NewFileAssertions(t, entry.Path).AssertFileExists("CMakeLists.txt")
}

func TestAcquire_IsIdempotent(t *testing.T) {
	parent := t.TempDir()
	cloner := &fakeCloner{files: map[string]string{"CMakeLists.txt": "project(task)\n"}}
	acq := NewAcquirer(cloner)
	ref := mustResolve(t, "masonlet/task-tracker")

	first, err := acq.Acquire(t.Context(), ref, parent)
	require.NoError(t, err)
	before := helpers.FileSet(t, first.Path)

	second, err := acq.Acquire(t.Context(), ref, parent)
	require.NoError(t, err)

	assert.Len(t, cloner.clones, 1, "second acquisition must not clone")
	assert.True(t, second.Preexisting)
	assert.True(t, second.Acquired)
	assert.Equal(t, before, helpers.FileSet(t, second.Path))
	assert.Empty(t, cloner.pulls)
}

func TestAcquire_PreservesLocalEdits(t *testing.T) {
	parent := t.TempDir()
	helpers.WriteFiles(t, filepath.Join(parent, "task-tracker"), map[string]string{
		"main.cpp": "// local edit\n",
	})
	cloner := &fakeCloner{}

	entry, err := NewAcquirer(cloner).Acquire(t.Context(), mustResolve(t, "masonlet/task-tracker"), parent)
	require.NoError(t, err)

	assert.True(t, entry.Preexisting)
	assert.Empty(t, cloner.clones)
	helpers.NewFileAssertions(t, entry.Path).AssertFileContains("main.cpp", "// local edit")
}

func TestAcquire_EmptyDirectoryIsCloned(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "task-tracker"), 0o750))
	cloner := &fakeCloner{}

	entry, err := NewAcquirer(cloner).Acquire(t.Context(), mustResolve(t, "masonlet/task-tracker"), parent)
	require.NoError(t, err)
	assert.False(t, entry.Preexisting)
	assert.Len(t, cloner.clones, 1)
}

func TestAcquire_FileInTheWay(t *testing.T) {
	parent := t.TempDir()
	helpers.WriteFiles(t, parent, map[string]string{"task-tracker": "not a dir"})

	_, err := NewAcquirer(&fakeCloner{}).Acquire(t.Context(), mustResolve(t, "masonlet/task-tracker"), parent)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryClone))
}

func TestAcquire_UpdatePullsExisting(t *testing.T) {
	parent := t.TempDir()
	helpers.WriteFiles(t, filepath.Join(parent, "task-tracker"), map[string]string{"README.md": "x"})
	cloner := &fakeCloner{}
	rec := metrics.NewMemoryRecorder()

	entry, err := NewAcquirer(cloner).WithUpdate(true).WithRecorder(rec).
		Acquire(t.Context(), mustResolve(t, "masonlet/task-tracker"), parent)
	require.NoError(t, err)

	assert.Equal(t, []string{entry.Path}, cloner.pulls)
	assert.Equal(t, 1, rec.Reused)
}

func TestAcquire_CloneFailureCarriesReference(t *testing.T) {
	parent := t.TempDir()
	cause := ferrors.NewError(ferrors.CategoryClone, "git clone failed").
		WithOutput("fatal: repository not found").
		WithContext("reason", "not_found").
		Build()
	rec := metrics.NewMemoryRecorder()

	_, err := NewAcquirer(&fakeCloner{err: cause}).WithRecorder(rec).
		Acquire(t.Context(), mustResolve(t, "masonlet/missing"), parent)
	require.Error(t, err)

	ce, ok := ferrors.AsClassified(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.CategoryClone, ce.Category())
	assert.Equal(t, "fatal: repository not found", ce.Output())
	refName, _ := ce.Context().GetString(ferrors.KeyReference)
	assert.Equal(t, "masonlet/missing", refName)
	reason, _ := ce.Context().GetString("reason")
	assert.Equal(t, "not_found", reason)
	assert.False(t, rec.Clones["masonlet/missing"])
}

func TestAcquire_ToolNotFoundPassesThrough(t *testing.T) {
	cause := ferrors.ToolNotFoundError("git").Build()
	_, err := NewAcquirer(&fakeCloner{err: cause}).Acquire(t.Context(), mustResolve(t, "masonlet/x"), t.TempDir())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryToolNotFound))
}

func TestAcquire_NativeClonerAgainstLocalOrigin(t *testing.T) {
	origin := helpers.SeedRepo(t, map[string]string{"CMakeLists.txt": "project(lib)\n"})
	ref := reference.Reference{Raw: origin, Owner: "local", Name: "lib", URL: origin, DirName: "lib"}

	entry, err := NewAcquirer(git.NewNativeClient("", nil)).Acquire(t.Context(), ref, t.TempDir())
	require.NoError(t, err)
	assert.True(t, git.IsRepository(entry.Path))
}

func TestEntry_MarkAcquiredOnce(t *testing.T) {
	e := &Entry{}
	e.markAcquired(true)
	e.markAcquired(false)
	assert.True(t, e.Acquired)
	assert.True(t, e.Preexisting)
}
